package dashboard

import (
	"context"
	"testing"
	"time"
)

type fakeStore struct {
	adminCalls int
	stats      AdminStats
}

func (f *fakeStore) AdminStats(context.Context) (AdminStats, error) {
	f.adminCalls++
	return f.stats, nil
}

func (f *fakeStore) LecturerStats(context.Context, int64) (LecturerStats, error) {
	return LecturerStats{TotalSubjects: 2}, nil
}

func (f *fakeStore) StudentStats(context.Context, int64) (StudentStats, error) {
	return StudentStats{EnrolledSubjects: 3}, nil
}

type memCache struct {
	data map[string][]byte
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	raw, ok := m.data[key]
	return raw, ok
}

func (m *memCache) Set(_ context.Context, key string, val []byte, _ time.Duration) {
	m.data[key] = val
}

func TestAdminStatsServedFromCache(t *testing.T) {
	store := &fakeStore{stats: AdminStats{TotalUsers: 12, UsersByRole: map[string]int{"admin": 1}}}
	cache := &memCache{data: make(map[string][]byte)}
	svc := NewService(store, cache, 30*time.Second, 2*time.Second)

	first, err := svc.Admin(context.Background())
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.Admin(context.Background())
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if store.adminCalls != 1 {
		t.Fatalf("store queried %d times, want 1", store.adminCalls)
	}
	if first.TotalUsers != 12 || second.TotalUsers != 12 {
		t.Fatalf("stats = %+v / %+v", first, second)
	}
	if second.UsersByRole["admin"] != 1 {
		t.Fatalf("usersByRole lost through cache: %+v", second.UsersByRole)
	}
}

func TestStatsWorkWithoutCache(t *testing.T) {
	store := &fakeStore{stats: AdminStats{TotalUsers: 4}}
	svc := NewService(store, nil, 30*time.Second, 2*time.Second)

	got, err := svc.Admin(context.Background())
	if err != nil {
		t.Fatalf("admin: %v", err)
	}
	if got.TotalUsers != 4 {
		t.Fatalf("totalUsers = %d, want 4", got.TotalUsers)
	}

	lect, err := svc.Lecturer(context.Background(), 1)
	if err != nil || lect.TotalSubjects != 2 {
		t.Fatalf("lecturer = %+v, err %v", lect, err)
	}
	stud, err := svc.Student(context.Background(), 1)
	if err != nil || stud.EnrolledSubjects != 3 {
		t.Fatalf("student = %+v, err %v", stud, err)
	}
}
