package httpadapter

import (
	"context"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/hijjiri/todo-api/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Middleware は http.Handler を包む関数。cmd/server 側で内→外の順に適用する。
type Middleware func(http.Handler) http.Handler

// statusRecorder は書き込まれた status code を後段の logging/metrics 用に覚える。
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// WithRecovery は handler 内の panic を 500 に変換する。
// per-request のエラーでプロセスを落とさないための最後の砦。
func WithRecovery(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered in handler",
						zap.Any("panic", rec),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.ByteString("stacktrace", debug.Stack()),
					)
					writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "internal error"})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// WithTimeout は、各リクエストに deadline を付与する middleware。
// - timeout <= 0 の場合は何もしない
// - 既に ctx に deadline がある場合は「より短い方」を優先（上書き事故を防ぐ）
//
// 目的：handler/usecase/repo まで ctx deadline を伝播させ、ストアのブロックを切る
func WithTimeout(timeout time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if timeout <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			// 既に deadline があるなら、より短い方を採用
			if dl, ok := r.Context().Deadline(); ok {
				if time.Until(dl) <= timeout {
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithLogging は method / path / status / duration を1行で出す。
func WithLogging(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			duration := time.Since(start)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", duration),
			}

			if rec.status >= http.StatusInternalServerError {
				logger.Error("HTTP request", fields...)
			} else {
				logger.Info("HTTP request", fields...)
			}
		})
	}
}

// WithMetrics は Prometheus のカウンタとヒストグラムを更新する。
func WithMetrics(metrics *observability.HTTPMetrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			metrics.Record(
				r.Method,
				normalizePath(r.URL.Path),
				strconv.Itoa(rec.status),
				time.Since(start),
			)
		})
	}
}

// normalizePath は動的な ID 部分をまとめてカーディナリティを抑える。
func normalizePath(path string) string {
	if strings.HasPrefix(path, "/api/todos/") {
		return "/api/todos/{id}"
	}
	return path
}

// WithTracing はリクエスト単位の server span を開く。
// ストア操作の子 span は usecase 側で開く。
func WithTracing() Middleware {
	tracer := otel.Tracer("interface/http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(r.Context(),
				r.Method+" "+normalizePath(r.URL.Path),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.Path),
				),
			)
			defer span.End()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithCORS は任意オリジンからの 4 メソッドを許可する。
// preflight はここで完結させ、後段には流さない。
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
