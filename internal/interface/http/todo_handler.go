package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
	todo_usecase "github.com/hijjiri/todo-api/internal/usecase/todo"

	"go.uber.org/zap"
)

// Pinger は /healthz がストア接続を確認するための最小インターフェース。
// 各 Repository 実装が満たす。
type Pinger interface {
	Ping(ctx context.Context) error
}

type TodoHandler struct {
	uc     todo_usecase.Usecase
	store  Pinger
	logger *zap.Logger
}

func NewTodoHandler(uc todo_usecase.Usecase, store Pinger, logger *zap.Logger) *TodoHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TodoHandler{
		uc:     uc,
		store:  store,
		logger: logger,
	}
}

// Routes は REST の4操作と補助エンドポイントを mux に束ねる。
func (h *TodoHandler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/todos", h.ListTodos)
	mux.HandleFunc("POST /api/todos", h.CreateTodo)
	mux.HandleFunc("PUT /api/todos/{id}", h.ToggleTodo)
	mux.HandleFunc("DELETE /api/todos/{id}", h.DeleteTodo)
	mux.HandleFunc("GET /api-docs", h.APIDocs)
	mux.HandleFunc("GET /healthz", h.Health)
	return mux
}

// ---- リクエスト / レスポンス型 ----

type todoJSON struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type createTodoRequest struct {
	// text フィールドの有無を区別したいのでポインタで受ける
	Text *string `json:"text"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toJSONTodo(t *domain_todo.Todo) todoJSON {
	return todoJSON{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
	}
}

// --- List ---
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := h.uc.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	// 0件でも null ではなく [] を返す
	out := make([]todoJSON, 0, len(todos))
	for _, t := range todos {
		out = append(out, toJSONTodo(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// --- Create ---
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req createTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request body"})
		return
	}
	if req.Text == nil {
		// body の形が不正なだけなので、ストアには行かせない
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "text is required"})
		return
	}

	t, err := h.uc.Create(r.Context(), *req.Text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toJSONTodo(t))
}

// --- Toggle ---
func (h *TodoHandler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	t, err := h.uc.Toggle(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJSONTodo(t))
}

// --- Delete ---
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Todo deleted"})
}

// --- Health ---
func (h *TodoHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("store ping failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- error mapper ---
// Usecase の結果を status code + {message} に一対一で写す。
// ストア由来のエラーはここで飲み込み、詳細はログにだけ残す。
func (h *TodoHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, todo_usecase.ErrEmptyText):
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "text is required"})

	case errors.Is(err, todo_usecase.ErrNotFound):
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "todo not found"})

	default:
		h.logger.Error("store error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
