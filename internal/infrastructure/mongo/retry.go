package mongo

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// RetryPolicy は「何回・どのくらい待つか」をまとめた設定。
type RetryPolicy struct {
	MaxAttempts int           // 例: 3（合計3回試す）
	BaseBackoff time.Duration // 例: 50ms
	MaxBackoff  time.Duration // 例: 500ms
}

// DefaultReadRetry は「読み取り（FindAll等）」向けの安全寄りデフォルト。
// 書き込みは再実行しない（Insert の二重実行を避ける）。
var DefaultReadRetry = RetryPolicy{
	MaxAttempts: 3,
	BaseBackoff: 50 * time.Millisecond,
	MaxBackoff:  500 * time.Millisecond,
}

// doWithRetry は、retryable なエラーのみをバックオフ付きで再実行する。
// - ctx の deadline/cancel を尊重して即中断する
func doWithRetry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if policy.BaseBackoff <= 0 {
		policy.BaseBackoff = 10 * time.Millisecond
	}
	if policy.MaxBackoff <= 0 {
		policy.MaxBackoff = 200 * time.Millisecond
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		// ctx が終了していれば即返す
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		// retry 対象外なら即返す
		if !isRetryableStoreErr(err) {
			return err
		}

		// 最終試行なら返す
		if attempt == policy.MaxAttempts {
			return err
		}

		// backoff
		sleep := backoff(policy.BaseBackoff, policy.MaxBackoff, attempt)
		if err := sleepWithContext(ctx, sleep); err != nil {
			// ctx timeout/cancel
			return err
		}
	}

	return lastErr
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// backoff は指数バックオフ（ジッタ無し・安全側の簡易版）
// attempt: 1,2,3...
func backoff(base, max time.Duration, attempt int) time.Duration {
	// base * 2^(attempt-1)
	b := base
	for i := 1; i < attempt; i++ {
		b *= 2
		if b >= max {
			return max
		}
	}
	if b > max {
		return max
	}
	return b
}

// isRetryableStoreErr は “一時的に起きがちな” ストア/ネットワーク系だけ true。
// 文字列判定は保険（ドライバのバージョン差を避けるため）。
func isRetryableStoreErr(err error) bool {
	// ctx 系は retry しない（上位に返す）
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// NotFound はドメインの結果であってストア障害ではない
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false
	}

	// ドライバが一時的と判断するケース
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return true
	}

	// net.Error の timeout
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}

	// サーバ選択・接続断でありがちなメッセージ（文字列ベースの保険）
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "server selection"):
		return true
	case strings.Contains(msg, "connection reset"):
		return true
	case strings.Contains(msg, "broken pipe"):
		return true
	case strings.Contains(msg, "timeout"):
		return true
	default:
		return false
	}
}
