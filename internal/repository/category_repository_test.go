package repository

import (
	"context"
	"errors"
	"testing"

	"product-catalog/internal/database"
	"product-catalog/internal/domain"
)

func TestCategoryRepository_CreateAndList(t *testing.T) {
	resetCatalog(t)
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	garden := &domain.Category{Name: "Garden"}
	if err := repo.Create(ctx, garden); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if garden.ID <= computersID {
		t.Errorf("expected a generated id after the seeded ones, got %d", garden.ID)
	}

	if err := repo.Create(ctx, &domain.Category{Name: "Garden"}); !errors.Is(err, ErrCategoryAlreadyExists) {
		t.Errorf("expected ErrCategoryAlreadyExists, got %v", err)
	}

	categories, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	want := []string{"Books", "Computers", "Electronics", "Garden"}
	if len(categories) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(categories))
	}
	for i, c := range categories {
		if c.Name != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], c.Name)
		}
	}
}

func TestCategoryRepository_FindByID(t *testing.T) {
	resetCatalog(t)
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	books, err := repo.FindByID(ctx, booksID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if books.Name != "Books" {
		t.Errorf("expected Books, got %s", books.Name)
	}

	if _, err := repo.FindByID(ctx, 999); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCategoryRepository_GetReferenceDoesNoIO(t *testing.T) {
	repo := NewCategoryRepository(testDB)

	ref := repo.GetReference(123456)
	if ref.ID != 123456 || ref.Name != "" {
		t.Errorf("unexpected reference %+v", ref)
	}
}

func TestTransactor_CommitAndRollback(t *testing.T) {
	resetCatalog(t)
	repo := NewProductRepository(testDB)
	tx := database.NewTransactor(testDB)
	ctx := context.Background()

	errBoom := errors.New("boom")
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		if !database.InTx(ctx) {
			t.Error("expected a transaction in context")
		}
		if _, err := repo.Save(ctx, newProduct("Discarded", "1.00")); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}

	var kept *domain.Product
	err = tx.WithinTx(ctx, func(ctx context.Context) error {
		// Nested scopes join the outer transaction
		return tx.WithinTx(ctx, func(ctx context.Context) error {
			saved, err := repo.Save(ctx, newProduct("Kept", "2.00", booksID))
			kept = saved
			return err
		})
	})
	if err != nil {
		t.Fatalf("expected commit, got %v", err)
	}

	page, err := repo.SearchByName(ctx, "", domain.PageRequest{Size: 10})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalElements != 1 || page.Content[0].ID != kept.ID {
		t.Errorf("expected only the committed product, got %d rows", page.TotalElements)
	}
}

func TestTransactor_ReadOnlyRejectsWrites(t *testing.T) {
	resetCatalog(t)
	repo := NewProductRepository(testDB)
	tx := database.NewTransactor(testDB)

	err := tx.WithinReadOnlyTx(context.Background(), func(ctx context.Context) error {
		_, err := repo.Save(ctx, newProduct("Forbidden", "1.00"))
		return err
	})
	if err == nil {
		t.Fatal("expected writes in a read-only transaction to fail")
	}
}

func TestTransactor_RollsBackOnPanic(t *testing.T) {
	resetCatalog(t)
	repo := NewProductRepository(testDB)
	tx := database.NewTransactor(testDB)
	ctx := context.Background()

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected the panic to propagate")
			}
		}()

		_ = tx.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := repo.Save(ctx, newProduct("Panicked", "1.00")); err != nil {
				return err
			}
			panic("unexpected")
		})
	}()

	if exists, err := repo.ExistsByID(ctx, 1); err != nil || exists {
		t.Errorf("expected the insert to be rolled back, exists=%v err=%v", exists, err)
	}
}
