package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
)

// TodoRepository は MySQL 実装。
// AUTO_INCREMENT の int64 を 10進文字列にして不透明 ID として返す。
// スキーマは schema.sql を参照。
type TodoRepository struct {
	db *sql.DB
}

func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// parseID は 10進の正整数だけを受け付ける。
// それ以外はこのストアのアドレッシングとして不正なので ErrNotFound。
func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, domain_todo.ErrNotFound
	}
	return n, nil
}

// Insert は domain の Todo を受け取り、INSERT して ID を付けて返す
func (r *TodoRepository) Insert(ctx context.Context, t *domain_todo.Todo) (*domain_todo.Todo, error) {
	res, err := r.db.ExecContext(
		ctx,
		"INSERT INTO todos (text, completed) VALUES (?, ?)",
		t.Text,
		t.Completed,
	)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	t.ID = strconv.FormatInt(id, 10)
	return t, nil
}

// FindAll は全件を id 昇順（= 挿入順）で返す
func (r *TodoRepository) FindAll(ctx context.Context) ([]*domain_todo.Todo, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, text, completed FROM todos ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := []*domain_todo.Todo{}
	for rows.Next() {
		var (
			id        int64
			text      string
			completed bool
		)
		if err := rows.Scan(&id, &text, &completed); err != nil {
			return nil, err
		}
		todos = append(todos, &domain_todo.Todo{
			ID:        strconv.FormatInt(id, 10),
			Text:      text,
			Completed: completed,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return todos, nil
}

func (r *TodoRepository) FindByID(ctx context.Context, id string) (*domain_todo.Todo, error) {
	n, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var (
		text      string
		completed bool
	)
	err = r.db.QueryRowContext(
		ctx,
		"SELECT text, completed FROM todos WHERE id = ?",
		n,
	).Scan(&text, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain_todo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &domain_todo.Todo{
		ID:        id,
		Text:      text,
		Completed: completed,
	}, nil
}

// Update は単一 UPDATE で差し替える。
// 呼び出し元は Toggle だけで completed が必ず変わるため、
// affected = 0 は「行が無い」と判定してよい。
func (r *TodoRepository) Update(ctx context.Context, t *domain_todo.Todo) (*domain_todo.Todo, error) {
	n, err := parseID(t.ID)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(
		ctx,
		"UPDATE todos SET text = ?, completed = ? WHERE id = ?",
		t.Text,
		t.Completed,
		n,
	)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain_todo.ErrNotFound
	}
	return t, nil
}

// DeleteByID は削除件数 0 を ErrNotFound にする
func (r *TodoRepository) DeleteByID(ctx context.Context, id string) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", n)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain_todo.ErrNotFound
	}
	return nil
}

// Ping は /healthz 用
func (r *TodoRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
