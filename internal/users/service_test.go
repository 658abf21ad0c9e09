package users

import (
	"context"
	"testing"
	"time"

	"campushub/internal/apperr"
)

type fakeStore struct {
	users  map[int64]User
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[int64]User{}, nextID: 1}
}

func (f *fakeStore) Insert(_ context.Context, u User) (User, error) {
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	f.nextID++
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*User, error) {
	if u, ok := f.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) List(_ context.Context, role string) ([]User, error) {
	var res []User
	for _, u := range f.users {
		if role == "" || u.Role == role {
			res = append(res, u)
		}
	}
	return res, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := f.users[id]; !ok {
		return false, nil
	}
	delete(f.users, id)
	return true, nil
}

func TestAddValidation(t *testing.T) {
	svc := NewService(newFakeStore(), time.Second)
	base := NewUserInput{
		UserCode: "STU-001",
		Name:     "Asha",
		Email:    "asha@uni.edu",
		Password: "s3cret1",
		Role:     RoleStudent,
	}

	tests := []struct {
		name   string
		mutate func(*NewUserInput)
		kind   apperr.Kind
	}{
		{name: "bad role", mutate: func(in *NewUserInput) { in.Role = "janitor" }, kind: apperr.KindValidation},
		{name: "bad email", mutate: func(in *NewUserInput) { in.Email = "not-an-email" }, kind: apperr.KindValidation},
		{name: "short password", mutate: func(in *NewUserInput) { in.Password = "abc" }, kind: apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			if _, err := svc.Add(context.Background(), in); apperr.KindOf(err) != tt.kind {
				t.Errorf("Add() error kind = %v, want %v (err=%v)", apperr.KindOf(err), tt.kind, err)
			}
		})
	}
}

func TestAddHashesPassword(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, time.Second)
	u, err := svc.Add(context.Background(), NewUserInput{
		UserCode: "STU-001", Name: "Asha", Email: "Asha@Uni.EDU", Password: "s3cret1", Role: RoleStudent,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if u.PasswordHash == "s3cret1" || u.PasswordHash == "" {
		t.Error("password not hashed")
	}
	if u.Email != "asha@uni.edu" {
		t.Errorf("email not normalized: %q", u.Email)
	}
}

func TestAuthenticate(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, time.Second)
	if _, err := svc.Add(context.Background(), NewUserInput{
		UserCode: "LEC-9", Name: "Dr. Okafor", Email: "okafor@uni.edu", Password: "passw0rd", Role: RoleLecturer,
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "okafor@uni.edu", "passw0rd"); err != nil {
		t.Errorf("valid credentials rejected: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "okafor@uni.edu", "wrong"); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Errorf("wrong password: kind = %v, want KindUnauthorized", apperr.KindOf(err))
	}
	if _, err := svc.Authenticate(context.Background(), "nobody@uni.edu", "passw0rd"); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Errorf("unknown email: kind = %v, want KindUnauthorized", apperr.KindOf(err))
	}
}

func TestRemoveUnknown(t *testing.T) {
	svc := NewService(newFakeStore(), time.Second)
	if err := svc.Remove(context.Background(), 99); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("Remove() kind = %v, want KindNotFound", apperr.KindOf(err))
	}
}
