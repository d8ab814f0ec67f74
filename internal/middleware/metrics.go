package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// RequestRecorder はHTTPリクエストのメトリクスを記録するインターフェース。
type RequestRecorder interface {
	IncInFlight()
	DecInFlight()
	RecordRequest(method, route string, statusCode int, duration time.Duration)
}

// UnmatchedRoute はどのルートにも一致しなかったリクエストのrouteラベル。
const UnmatchedRoute = "unmatched"

// NewMetricsMiddleware はリクエスト数・レイテンシ・処理中リクエスト数を記録するミドルウェアを返す。
// routeラベルにはchiのルートパターンを使い、パスパラメータによるカーディナリティ増加を防ぐ。
func NewMetricsMiddleware(recorder RequestRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder.IncInFlight()
			defer recorder.DecInFlight()

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			route := UnmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			recorder.RecordRequest(r.Method, route, rec.statusCode, time.Since(start))
		})
	}
}
