package memory

import (
	"context"
	"sync"

	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"

	"github.com/google/uuid"
)

// TodoRepository はプロセス内ストア。テストと STORE_DRIVER=memory で使う。
// FindAll が挿入順を保てるよう、map と別に順序を持つ。
type TodoRepository struct {
	mu    sync.Mutex
	items map[string]*domain_todo.Todo
	order []string
}

func NewTodoRepository() *TodoRepository {
	return &TodoRepository{
		items: make(map[string]*domain_todo.Todo),
	}
}

func (r *TodoRepository) Insert(ctx context.Context, t *domain_todo.Todo) (*domain_todo.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()

	stored := &domain_todo.Todo{
		ID:        id,
		Text:      t.Text,
		Completed: t.Completed,
	}
	r.items[id] = stored
	r.order = append(r.order, id)

	t.ID = id
	return copyTodo(stored), nil
}

func (r *TodoRepository) FindAll(ctx context.Context) ([]*domain_todo.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	todos := make([]*domain_todo.Todo, 0, len(r.order))
	for _, id := range r.order {
		todos = append(todos, copyTodo(r.items[id]))
	}
	return todos, nil
}

func (r *TodoRepository) FindByID(ctx context.Context, id string) (*domain_todo.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok {
		return nil, domain_todo.ErrNotFound
	}
	return copyTodo(t), nil
}

func (r *TodoRepository) Update(ctx context.Context, t *domain_todo.Todo) (*domain_todo.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[t.ID]; !ok {
		return nil, domain_todo.ErrNotFound
	}
	r.items[t.ID] = copyTodo(t)
	return copyTodo(t), nil
}

func (r *TodoRepository) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain_todo.ErrNotFound
	}
	delete(r.items, id)

	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Ping は /healthz 用。プロセス内なので常に成功。
func (r *TodoRepository) Ping(ctx context.Context) error {
	return nil
}

// 内部の値を外に漏らさないためのコピー
func copyTodo(t *domain_todo.Todo) *domain_todo.Todo {
	cp := *t
	return &cp
}
