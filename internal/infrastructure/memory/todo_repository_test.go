package memory

import (
	"context"
	"errors"
	"testing"

	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
)

func TestInsert_AssignsUniqueIDs(t *testing.T) {
	t.Parallel()

	repo := NewTodoRepository()
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		got, err := repo.Insert(ctx, &domain_todo.Todo{Text: "A"})
		if err != nil {
			t.Fatalf("Insert returned error: %v", err)
		}
		if got.ID == "" {
			t.Fatal("expected non-empty ID")
		}
		if seen[got.ID] {
			t.Fatalf("duplicate ID %q", got.ID)
		}
		seen[got.ID] = true
	}
}

func TestFindAll_InsertionOrder(t *testing.T) {
	t.Parallel()

	repo := NewTodoRepository()
	ctx := context.Background()

	for _, text := range []string{"A", "B", "C"} {
		if _, err := repo.Insert(ctx, &domain_todo.Todo{Text: text}); err != nil {
			t.Fatalf("Insert returned error: %v", err)
		}
	}

	todos, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll returned error: %v", err)
	}
	if len(todos) != 3 {
		t.Fatalf("expected 3 todos, got %d", len(todos))
	}
	for i, text := range []string{"A", "B", "C"} {
		if todos[i].Text != text {
			t.Errorf("position %d: expected %q, got %q", i, text, todos[i].Text)
		}
	}
}

func TestFindAll_Empty(t *testing.T) {
	t.Parallel()

	repo := NewTodoRepository()

	todos, err := repo.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll returned error: %v", err)
	}
	if len(todos) != 0 {
		t.Errorf("expected empty slice, got %d items", len(todos))
	}
}

func TestFindByID_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewTodoRepository()

	_, err := repo.FindByID(context.Background(), "no-such-id")
	if !errors.Is(err, domain_todo.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_ReplacesRecord(t *testing.T) {
	t.Parallel()

	repo := NewTodoRepository()
	ctx := context.Background()

	created, err := repo.Insert(ctx, &domain_todo.Todo{Text: "A"})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	created.Completed = true
	if _, err := repo.Update(ctx, created); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	got, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if !got.Completed {
		t.Error("expected Completed=true after update")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewTodoRepository()

	_, err := repo.Update(context.Background(), &domain_todo.Todo{ID: "missing", Text: "A"})
	if !errors.Is(err, domain_todo.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteByID(t *testing.T) {
	t.Parallel()

	repo := NewTodoRepository()
	ctx := context.Background()

	created, err := repo.Insert(ctx, &domain_todo.Todo{Text: "削除用タスク"})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	if err := repo.DeleteByID(ctx, created.ID); err != nil {
		t.Fatalf("DeleteByID returned error: %v", err)
	}

	// 削除後は一覧にも出ない
	todos, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll returned error: %v", err)
	}
	for _, td := range todos {
		if td.ID == created.ID {
			t.Errorf("deleted id %q still listed", created.ID)
		}
	}

	// 二重削除は NotFound
	if err := repo.DeleteByID(ctx, created.ID); !errors.Is(err, domain_todo.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestInsert_ReturnsCopy(t *testing.T) {
	t.Parallel()

	repo := NewTodoRepository()
	ctx := context.Background()

	created, err := repo.Insert(ctx, &domain_todo.Todo{Text: "A"})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	// 返り値をいじっても保存済みレコードは変わらない
	created.Completed = true

	got, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if got.Completed {
		t.Error("stored record mutated through returned pointer")
	}
}
