package httpmiddleware

import "testing"

func TestTokenBucketExhaustion(t *testing.T) {
	l := NewTokenBucket(3, 3)
	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d unexpectedly limited", i)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("bucket should be empty")
	}
	// other clients are unaffected
	if !l.Allow("10.0.0.2") {
		t.Error("independent key should not be limited")
	}
}

func TestTokenBucketDefaultsCapacity(t *testing.T) {
	l := NewTokenBucket(0, 5)
	if l.capacity != 5 {
		t.Errorf("capacity = %d, want 5", l.capacity)
	}
}
