package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hitoshi/addressapi/internal/metrics"
	"github.com/hitoshi/addressapi/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Route はHTTPメソッド・パスパターン・ハンドラーの組。
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger  *slog.Logger
	Metrics middleware.RequestRecorder

	// MetricsGatherer がnilでなければ GET /metrics を公開する。
	MetricsGatherer prometheus.Gatherer

	AddressService AddressServiceInterface
	UserService    UserServiceInterface
}

// Routes は公開する全ルートの一覧を返す。
// /api 配下は互換用のエイリアスで、プレフィックスなしと同じハンドラーを使う。
func Routes(deps *RouterDeps) []Route {
	addressHandler := NewAddressHandler(deps.AddressService)
	userHandler := NewUserHandler(deps.UserService)

	routes := []Route{
		{http.MethodGet, "/health", Health},
		{http.MethodGet, "/address", addressHandler.GetAddress},
		{http.MethodGet, "/users/{" + UserIDParam + "}", userHandler.GetUser},
		{http.MethodGet, "/api/address", addressHandler.GetAddress},
		{http.MethodGet, "/api/users/{" + UserIDParam + "}", userHandler.GetUser},
	}

	if deps.MetricsGatherer != nil {
		routes = append(routes, Route{http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer).ServeHTTP})
	}

	return routes
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
// ルート表は起動時に1度だけ構築し、以後変更しない。
//
// ミドルウェアスタックの実行順序:
//
//	Logging → Recovery → Metrics → SecurityHeaders → StripSlashes
//
// ロギングを最外周に置き、404/405/422/500を含む全リクエストを記録する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	// /users/1/ と /users/1 を同一ルートとして扱う
	r.Use(chimw.StripSlashes)

	r.NotFound(middleware.NotFoundHandler)
	r.MethodNotAllowed(newMethodNotAllowedHandler(r))

	for _, rt := range Routes(deps) {
		r.Method(rt.Method, rt.Pattern, rt.Handler)
	}

	return r
}

// routableMethods はchiがルーティング対象とする標準メソッド。
var routableMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
	http.MethodDelete, http.MethodOptions, http.MethodConnect, http.MethodTrace,
}

// newMethodNotAllowedHandler はchiが405と判定したリクエストを振り分けるハンドラーを返す。
// chiは未知のメソッド（PROPFINDなど）をパスに関係なく405扱いにするため、
// パスにどのメソッドも登録されていなければ404を返す。
// 405の場合は登録済みメソッドをAllowヘッダーに設定する。
func newMethodNotAllowedHandler(routes chi.Routes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		allowed := allowedMethods(routes, routePath(r))
		if len(allowed) == 0 {
			middleware.NotFoundHandler(w, r)
			return
		}
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		middleware.MethodNotAllowedHandler(w, r)
	}
}

// allowedMethods はpathに一致するルートを持つメソッドの一覧を返す。
func allowedMethods(routes chi.Routes, path string) []string {
	var allowed []string
	for _, m := range routableMethods {
		if routes.Match(chi.NewRouteContext(), m, path) {
			allowed = append(allowed, m)
		}
	}
	return allowed
}

// routePath はchiがルーティングに使うパスを返す。StripSlashes適用後の値を優先する。
func routePath(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePath != "" {
		return rctx.RoutePath
	}
	if r.URL.RawPath != "" {
		return r.URL.RawPath
	}
	if r.URL.Path == "" {
		return "/"
	}
	return r.URL.Path
}
