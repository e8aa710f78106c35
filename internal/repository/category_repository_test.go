package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecommerce-api/internal/domain"

	"github.com/google/uuid"
)

func TestCategoryRepository_CreateDuplicateName(t *testing.T) {
	resetCatalogTables(t)
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	if err := repo.Create(ctx, &domain.Category{ID: uuid.New(), Name: "beverages", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	err := repo.Create(ctx, &domain.Category{ID: uuid.New(), Name: "beverages", CreatedAt: time.Now()})
	if !errors.Is(err, ErrCategoryAlreadyExists) {
		t.Errorf("expected ErrCategoryAlreadyExists, got %v", err)
	}

	// Names are case-sensitive: a different casing is a different category
	if err := repo.Create(ctx, &domain.Category{ID: uuid.New(), Name: "Beverages", CreatedAt: time.Now()}); err != nil {
		t.Errorf("differently cased name rejected: %v", err)
	}
}

func TestCategoryRepository_UpdateRename(t *testing.T) {
	resetCatalogTables(t)
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	category := createTestCategory(t, "snaks")

	category.Name = "snacks"
	if err := repo.Update(ctx, category); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	stored, err := repo.FindByID(ctx, category.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if stored.Name != "snacks" {
		t.Errorf("rename not applied: %q", stored.Name)
	}

	// Renaming onto an existing name is rejected
	other := createTestCategory(t, "beverages")
	other.Name = "snacks"
	if err := repo.Update(ctx, other); !errors.Is(err, ErrCategoryAlreadyExists) {
		t.Errorf("expected ErrCategoryAlreadyExists, got %v", err)
	}

	missing := &domain.Category{ID: uuid.New(), Name: "ghost"}
	if err := repo.Update(ctx, missing); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCategoryRepository_DeleteInUse(t *testing.T) {
	resetCatalogTables(t)
	categoryRepo := NewCategoryRepository(testDB)
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	category := createTestCategory(t, "beverages")
	product := newTestProduct("soda", category.ID, 1, time.Now())
	if err := productRepo.Create(ctx, product); err != nil {
		t.Fatalf("Create product failed: %v", err)
	}

	if err := categoryRepo.Delete(ctx, category.ID); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse, got %v", err)
	}

	// The rejected delete must leave the category intact
	if _, err := categoryRepo.FindByID(ctx, category.ID); err != nil {
		t.Fatalf("category vanished after rejected delete: %v", err)
	}

	// Once the last referencing product is gone, the delete succeeds
	if err := productRepo.Delete(ctx, product.ID); err != nil {
		t.Fatalf("Delete product failed: %v", err)
	}
	if err := categoryRepo.Delete(ctx, category.ID); err != nil {
		t.Fatalf("Delete category failed: %v", err)
	}
	if _, err := categoryRepo.FindByID(ctx, category.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("expected ErrCategoryNotFound after delete, got %v", err)
	}
}

func TestCategoryRepository_DeleteNotFound(t *testing.T) {
	resetCatalogTables(t)
	repo := NewCategoryRepository(testDB)

	if err := repo.Delete(context.Background(), uuid.New()); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCategoryRepository_ListOrderedByName(t *testing.T) {
	resetCatalogTables(t)
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	for _, name := range []string{"snacks", "beverages", "produce"} {
		createTestCategory(t, name)
	}

	categories, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	want := []string{"beverages", "produce", "snacks"}
	if len(categories) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(categories))
	}
	for i, name := range want {
		if categories[i].Name != name {
			t.Errorf("position %d: got %q, want %q", i, categories[i].Name, name)
		}
	}
}
