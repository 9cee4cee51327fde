package todo_usecase

import (
	"context"
	"errors"
	"testing"

	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
	"go.uber.org/zap"
)

// テスト用のモック Repository
type mockRepo struct {
	// 挙動を制御するためのフィールド
	insertFn   func(ctx context.Context, t *domain_todo.Todo) (*domain_todo.Todo, error)
	findAllFn  func(ctx context.Context) ([]*domain_todo.Todo, error)
	findByIDFn func(ctx context.Context, id string) (*domain_todo.Todo, error)
	updateFn   func(ctx context.Context, t *domain_todo.Todo) (*domain_todo.Todo, error)
	deleteFn   func(ctx context.Context, id string) error
}

func (m *mockRepo) Insert(ctx context.Context, t *domain_todo.Todo) (*domain_todo.Todo, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, t)
	}
	return t, nil
}

func (m *mockRepo) FindAll(ctx context.Context) ([]*domain_todo.Todo, error) {
	if m.findAllFn != nil {
		return m.findAllFn(ctx)
	}
	return []*domain_todo.Todo{}, nil
}

func (m *mockRepo) FindByID(ctx context.Context, id string) (*domain_todo.Todo, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, domain_todo.ErrNotFound
}

func (m *mockRepo) Update(ctx context.Context, t *domain_todo.Todo) (*domain_todo.Todo, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, t)
	}
	return t, nil
}

func (m *mockRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func TestUsecase_Create_Success(t *testing.T) {
	t.Parallel()

	repo := &mockRepo{
		insertFn: func(ctx context.Context, td *domain_todo.Todo) (*domain_todo.Todo, error) {
			// 疑似的にIDを付与する
			td.ID = "64f0c2a9e13d5a0001a1b2c3"
			return td, nil
		},
	}

	uc := New(repo, zap.NewNop())

	got, err := uc.Create(context.Background(), "テストタスク")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if got.ID == "" {
		t.Error("expected non-empty ID")
	}
	if got.Text != "テストタスク" {
		t.Errorf("expected Text=%q, got %q", "テストタスク", got.Text)
	}
	if got.Completed {
		t.Errorf("expected Completed=false, got true")
	}
}

func TestUsecase_Create_EmptyText(t *testing.T) {
	t.Parallel()

	inserted := false
	repo := &mockRepo{
		insertFn: func(ctx context.Context, td *domain_todo.Todo) (*domain_todo.Todo, error) {
			inserted = true
			return td, nil
		},
	}
	uc := New(repo, zap.NewNop())

	for _, text := range []string{"", "   "} {
		_, err := uc.Create(context.Background(), text)
		if err == nil {
			t.Fatalf("Create(%q): expected error, got nil", text)
		}
		if !errors.Is(err, ErrEmptyText) {
			t.Errorf("Create(%q): expected ErrEmptyText, got %v", text, err)
		}
	}

	// バリデーションで落ちたらストアには触らない
	if inserted {
		t.Error("expected no Insert call for invalid text")
	}
}

func TestUsecase_List_Success(t *testing.T) {
	t.Parallel()

	repo := &mockRepo{
		findAllFn: func(ctx context.Context) ([]*domain_todo.Todo, error) {
			return []*domain_todo.Todo{
				{ID: "1", Text: "A", Completed: false},
				{ID: "2", Text: "B", Completed: true},
			}, nil
		},
	}

	uc := New(repo, zap.NewNop())

	list, err := uc.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(list) != 2 {
		t.Fatalf("expected 2 todos, got %d", len(list))
	}
	if list[0].Text != "A" || list[1].Text != "B" {
		t.Errorf("unexpected texts: %#v", list)
	}
}

func TestUsecase_Toggle_Success(t *testing.T) {
	t.Parallel()

	repo := &mockRepo{
		findByIDFn: func(ctx context.Context, id string) (*domain_todo.Todo, error) {
			if id != "abc" {
				t.Errorf("expected id=abc, got %q", id)
			}
			return &domain_todo.Todo{ID: "abc", Text: "A", Completed: false}, nil
		},
		updateFn: func(ctx context.Context, td *domain_todo.Todo) (*domain_todo.Todo, error) {
			return td, nil
		},
	}

	uc := New(repo, zap.NewNop())

	got, err := uc.Toggle(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if !got.Completed {
		t.Error("expected Completed=true after toggle")
	}
	if got.Text != "A" {
		t.Errorf("toggle must not touch text, got %q", got.Text)
	}
}

func TestUsecase_Toggle_Involution(t *testing.T) {
	t.Parallel()

	// read-flip-write を2回通すと元の値に戻ること
	stored := &domain_todo.Todo{ID: "abc", Text: "A", Completed: false}
	repo := &mockRepo{
		findByIDFn: func(ctx context.Context, id string) (*domain_todo.Todo, error) {
			cp := *stored
			return &cp, nil
		},
		updateFn: func(ctx context.Context, td *domain_todo.Todo) (*domain_todo.Todo, error) {
			cp := *td
			stored = &cp
			return td, nil
		},
	}

	uc := New(repo, zap.NewNop())

	if _, err := uc.Toggle(context.Background(), "abc"); err != nil {
		t.Fatalf("first Toggle returned error: %v", err)
	}
	if _, err := uc.Toggle(context.Background(), "abc"); err != nil {
		t.Fatalf("second Toggle returned error: %v", err)
	}

	if stored.Completed {
		t.Error("expected Completed back to false after two toggles")
	}
}

func TestUsecase_Toggle_NotFound(t *testing.T) {
	t.Parallel()

	repo := &mockRepo{
		findByIDFn: func(ctx context.Context, id string) (*domain_todo.Todo, error) {
			return nil, domain_todo.ErrNotFound
		},
	}
	uc := New(repo, zap.NewNop())

	_, err := uc.Toggle(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUsecase_Delete_Success(t *testing.T) {
	t.Parallel()

	repo := &mockRepo{
		deleteFn: func(ctx context.Context, id string) error {
			if id != "abc" {
				t.Errorf("expected id=abc, got %q", id)
			}
			return nil
		},
	}

	uc := New(repo, zap.NewNop())

	if err := uc.Delete(context.Background(), "abc"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
}

func TestUsecase_Delete_NotFound(t *testing.T) {
	t.Parallel()

	repo := &mockRepo{
		deleteFn: func(ctx context.Context, id string) error {
			return domain_todo.ErrNotFound // 削除対象なし
		},
	}
	uc := New(repo, zap.NewNop())

	err := uc.Delete(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUsecase_Toggle_StoreError(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("connection reset")
	repo := &mockRepo{
		findByIDFn: func(ctx context.Context, id string) (*domain_todo.Todo, error) {
			return nil, storeErr
		},
	}
	uc := New(repo, zap.NewNop())

	_, err := uc.Toggle(context.Background(), "abc")
	if !errors.Is(err, storeErr) {
		t.Errorf("expected store error passthrough, got %v", err)
	}
}
