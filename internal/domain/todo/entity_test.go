package todo

import "testing"

func TestNewTodo_Success(t *testing.T) {
	t.Parallel()

	got, err := NewTodo("牛乳を買う")
	if err != nil {
		t.Fatalf("NewTodo returned error: %v", err)
	}

	if got.Text != "牛乳を買う" {
		t.Errorf("expected Text=%q, got %q", "牛乳を買う", got.Text)
	}
	if got.Completed {
		t.Errorf("expected Completed=false, got true")
	}
	if got.ID != "" {
		t.Errorf("expected empty ID before insert, got %q", got.ID)
	}
}

func TestNewTodo_PreservesExactText(t *testing.T) {
	t.Parallel()

	// 前後の空白は拒否条件の判定にだけ使い、保存するテキストは触らない
	got, err := NewTodo("  buy milk  ")
	if err != nil {
		t.Fatalf("NewTodo returned error: %v", err)
	}
	if got.Text != "  buy milk  " {
		t.Errorf("expected exact text preserved, got %q", got.Text)
	}
}

func TestNewTodo_EmptyText(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "   ", "\t\n"} {
		if _, err := NewTodo(text); err != ErrEmptyText {
			t.Errorf("NewTodo(%q): expected ErrEmptyText, got %v", text, err)
		}
	}
}

func TestToggle_Involution(t *testing.T) {
	t.Parallel()

	td := &Todo{ID: "1", Text: "A", Completed: false}

	td.Toggle()
	if !td.Completed {
		t.Fatal("expected Completed=true after first toggle")
	}

	td.Toggle()
	if td.Completed {
		t.Fatal("expected Completed=false after second toggle")
	}
}
