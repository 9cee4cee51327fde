package todo

import (
	"errors"
	"strings"
)

// Todo は Todo 集約のルートエンティティ。
// ID はストア側が採番する不透明な文字列（Mongo の ObjectID hex など）。
// 作成後の Text は不変で、編集の操作は存在しない。
type Todo struct {
	ID        string
	Text      string
	Completed bool
}

// ---- ドメインエラー（sentinel error） ----

var (
	// テキストが空（空白のみを含む）のときに使う共通エラー。
	ErrEmptyText = errors.New("todo text must not be empty")

	// ID がストアのレコードに解決できないときに使う共通エラー。
	// 形式不正な ID（ObjectID として読めない等）も同じ扱いにする。
	ErrNotFound = errors.New("todo not found")
)

// ---- ファクトリ / バリデーション ----

// NewTodo は「新規作成用」のコンストラクタ。
// 不変条件（テキストが空白のみでないこと）をここでチェックする。
// 入力されたテキストは trim せず、送信されたままの値を保持する。
func NewTodo(text string) (*Todo, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	return &Todo{
		Text:      text,
		Completed: false,
	}, nil
}

// Toggle は Completed を反転する。状態遷移はこの1種類だけ。
func (t *Todo) Toggle() {
	t.Completed = !t.Completed
}
