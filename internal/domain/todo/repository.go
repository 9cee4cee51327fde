package todo

import "context"

// Repository は Todo の永続化を抽象化するインターフェース。
// 実装は internal/infrastructure 以下（mongo / mysql / memory）。
// 存在しない ID・形式不正な ID はどの実装でも ErrNotFound を返す。
type Repository interface {
	Insert(ctx context.Context, t *Todo) (*Todo, error)
	FindAll(ctx context.Context) ([]*Todo, error)
	FindByID(ctx context.Context, id string) (*Todo, error)
	Update(ctx context.Context, t *Todo) (*Todo, error)
	DeleteByID(ctx context.Context, id string) error
}
