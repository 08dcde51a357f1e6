package store

import (
	"context"
	"errors"
	"testing"

	"github.com/cardhaus/cardhaus/internal/db"
	"github.com/cardhaus/cardhaus/internal/model"
)

func TestCreateUserWithStores(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a := seedStore(t, database, "A", 10)
	b := seedStore(t, database, "B", 10)

	u, err := CreateUser(ctx, database, "alex", "hash", model.RoleManager, []string{a.ID, b.ID})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if len(u.StoreIDs) != 2 {
		t.Errorf("expected 2 store attachments, got %v", u.StoreIDs)
	}

	// Attaching to an unknown store fails and nothing is persisted.
	_, err = CreateUser(ctx, database, "sam", "hash", model.RoleManager,
		[]string{"00000000-0000-0000-0000-000000000000"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown store, got %v", err)
	}
	if _, err := GetUserByUsername(ctx, database, "sam"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected failed creation to be rolled back, got %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, database, "", "hash", model.RoleEmployee, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty username, got %v", err)
	}
	if _, err := CreateUser(ctx, database, "alex", "hash", "intern", nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown role, got %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a := seedStore(t, database, "A", 10)
	b := seedStore(t, database, "B", 10)

	u, _ := CreateUser(ctx, database, "alex", "hash", model.RoleEmployee, nil)

	updated, err := UpdateUser(ctx, database, u.ID, model.RoleManager, []string{a.ID})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Role != model.RoleManager || len(updated.StoreIDs) != 1 {
		t.Errorf("unexpected user after update: %+v", updated)
	}

	// Attachments are replaced, not appended.
	updated, err = UpdateUser(ctx, database, u.ID, model.RoleManager, []string{b.ID})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if len(updated.StoreIDs) != 1 || updated.StoreIDs[0] != b.ID {
		t.Errorf("expected attachments replaced with store B, got %v", updated.StoreIDs)
	}
}

func TestDeleteUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u, _ := CreateUser(ctx, database, "alex", "hash", model.RoleEmployee, nil)

	if err := DeleteUser(ctx, database, u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if err := DeleteUser(ctx, database, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}

	users, _ := ListUsers(ctx, database)
	if len(users) != 0 {
		t.Errorf("expected no users listed, got %d", len(users))
	}

	// The username lookup still resolves for auth checks; DeletedAt marks it.
	got, err := GetUserByUsername(ctx, database, "alex")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got.DeletedAt == nil {
		t.Error("expected DeletedAt to be set")
	}

	if err := SetUserPassword(ctx, database, u.ID, "newhash"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound setting password on deleted user, got %v", err)
	}
}

func TestDeletedUsernameReusable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u, _ := CreateUser(ctx, database, "alex", "hash", model.RoleEmployee, nil)
	DeleteUser(ctx, database, u.ID)

	if _, err := CreateUser(ctx, database, "alex", "hash2", model.RoleEmployee, nil); err != nil {
		t.Errorf("expected username reuse after delete, got %v", err)
	}
}
