package todo_usecase

import (
	"context"
	"errors"

	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ===== エラー定数（Handler側からも使う） =====

var (
	ErrEmptyText = errors.New("text is empty")
	ErrNotFound  = errors.New("todo not found")
)

// ===== 外部に公開する Usecase インターフェース =====

type Usecase interface {
	List(ctx context.Context) ([]*domain_todo.Todo, error)
	Create(ctx context.Context, text string) (*domain_todo.Todo, error)
	Toggle(ctx context.Context, id string) (*domain_todo.Todo, error)
	Delete(ctx context.Context, id string) error
}

// ===== 実装 =====

type usecase struct {
	repo   domain_todo.Repository
	logger *zap.Logger
	tracer trace.Tracer
}

func New(repo domain_todo.Repository, logger *zap.Logger) Usecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &usecase{
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("usecase/todo"),
	}
}

// List ユースケース。FindAll の素通しで、空のコレクションは空スライス。
func (u *usecase) List(ctx context.Context) ([]*domain_todo.Todo, error) {
	ctx, span := u.tracer.Start(ctx, "todo.List")
	defer span.End()

	return u.repo.FindAll(ctx)
}

// Create ユースケース。
// 空白のみのテキストは ErrEmptyText で拒否し、ストアには触らない。
// 保存するのは送信されたままのテキスト（trim しない）。
func (u *usecase) Create(ctx context.Context, text string) (*domain_todo.Todo, error) {
	ctx, span := u.tracer.Start(ctx, "todo.Create")
	defer span.End()

	t, err := domain_todo.NewTodo(text)
	if err != nil {
		return nil, ErrEmptyText
	}

	return u.repo.Insert(ctx, t)
}

// Toggle ユースケース。read-flip-write で、同一 ID への同時 Toggle は
// last-writer-wins になる（書き込み自体はレコード単位で atomic）。
func (u *usecase) Toggle(ctx context.Context, id string) (*domain_todo.Todo, error) {
	ctx, span := u.tracer.Start(ctx, "todo.Toggle",
		trace.WithAttributes(attribute.String("todo.id", id)),
	)
	defer span.End()

	t, err := u.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain_todo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	t.Toggle()

	updated, err := u.repo.Update(ctx, t)
	if err != nil {
		// read と write の間に消されたケースも NotFound に寄せる
		if errors.Is(err, domain_todo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete ユースケース。
// 存在しない ID は ErrNotFound（冪等 200 にはしない。Toggle の 404 と揃える）。
func (u *usecase) Delete(ctx context.Context, id string) error {
	ctx, span := u.tracer.Start(ctx, "todo.Delete",
		trace.WithAttributes(attribute.String("todo.id", id)),
	)
	defer span.End()

	if err := u.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, domain_todo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
