package store

import (
	"context"
	"errors"
	"testing"

	"github.com/cardhaus/cardhaus/internal/db"
	"github.com/cardhaus/cardhaus/internal/model"
)

func TestCreateStoreValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateStore(ctx, database, "", "", 100); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty name, got %v", err)
	}
	if _, err := CreateStore(ctx, database, "Downtown", "", 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for zero capacity, got %v", err)
	}
	if _, err := CreateStore(ctx, database, "Downtown", "", -5); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for negative capacity, got %v", err)
	}

	s, err := CreateStore(ctx, database, "Downtown", "1 Main St", 100)
	if err != nil {
		t.Fatalf("CreateStore: %v", err)
	}
	if s.CurrentCapacity != 0 || !s.IsActive {
		t.Errorf("unexpected new store: %+v", s)
	}
	if s.Address != "1 Main St" {
		t.Errorf("expected address to be stored, got %q", s.Address)
	}
}

func TestUpdateStoreCapacityFloor(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	s := seedStore(t, database, "Downtown", 100)
	p := seedAccessory(t, database, "SLV-1", 2)

	// Occupy 20 units.
	if _, _, err := CreateInventory(ctx, database, CreateInventoryParams{
		StoreID: s.ID, ProductID: p.ID, Quantity: 10, Location: model.LocationFloor,
	}); err != nil {
		t.Fatalf("CreateInventory: %v", err)
	}

	// Shrinking below current usage is rejected.
	fifteen := 15.0
	if _, err := UpdateStore(ctx, database, s.ID, UpdateStoreParams{MaxCapacity: &fifteen}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput when shrinking below usage, got %v", err)
	}

	// Shrinking to exactly the usage is allowed.
	twenty := 20.0
	updated, err := UpdateStore(ctx, database, s.ID, UpdateStoreParams{MaxCapacity: &twenty})
	if err != nil {
		t.Fatalf("UpdateStore: %v", err)
	}
	if updated.MaxCapacity != 20 {
		t.Errorf("expected max capacity 20, got %g", updated.MaxCapacity)
	}
}

func TestDeleteStore(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	s := seedStore(t, database, "Downtown", 100)
	if err := DeleteStore(ctx, database, s.ID); err != nil {
		t.Fatalf("DeleteStore: %v", err)
	}

	stores, _ := ListStores(ctx, database)
	if len(stores) != 0 {
		t.Errorf("expected no active stores, got %d", len(stores))
	}

	// Soft-deleted stores no longer accept writes.
	if _, err := UpdateStore(ctx, database, s.ID, UpdateStoreParams{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound updating deleted store, got %v", err)
	}
	if err := DeleteStore(ctx, database, s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestListStoresSorted(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	seedStore(t, database, "Zebra", 10)
	seedStore(t, database, "Alpha", 10)

	stores, err := ListStores(ctx, database)
	if err != nil {
		t.Fatalf("ListStores: %v", err)
	}
	if len(stores) != 2 || stores[0].Name != "Alpha" {
		t.Errorf("expected stores sorted by name, got %+v", stores)
	}
}
