package auth

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	pair, err := Issue("42", "lecturer", "campushub", "test-key", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := Parse(pair.AccessToken, "test-key", "campushub")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "42" {
		t.Errorf("subject = %q, want 42", claims.Subject)
	}
	if claims.Role != "lecturer" {
		t.Errorf("role = %q, want lecturer", claims.Role)
	}
}

func TestParseRejects(t *testing.T) {
	pair, err := Issue("42", "admin", "campushub", "test-key", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name   string
		token  string
		key    string
		issuer string
	}{
		{name: "wrong key", token: pair.AccessToken, key: "other-key", issuer: "campushub"},
		{name: "wrong issuer", token: pair.AccessToken, key: "test-key", issuer: "someone-else"},
		{name: "garbage", token: "not.a.token", key: "test-key", issuer: "campushub"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.token, tt.key, tt.issuer); err == nil {
				t.Error("Parse accepted invalid token")
			}
		})
	}
}

func TestParseRejectsExpired(t *testing.T) {
	pair, err := Issue("42", "student", "campushub", "test-key", -time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := Parse(pair.AccessToken, "test-key", "campushub"); err == nil {
		t.Error("Parse accepted expired token")
	}
}
