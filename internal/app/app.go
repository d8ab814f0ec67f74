package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hitoshi/addressapi/internal/address"
	"github.com/hitoshi/addressapi/internal/config"
	"github.com/hitoshi/addressapi/internal/handler"
	"github.com/hitoshi/addressapi/internal/logger"
	"github.com/hitoshi/addressapi/internal/metrics"
	"github.com/hitoshi/addressapi/internal/repository"
	"github.com/hitoshi/addressapi/internal/user"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、ログ初期化をスキップして設定のみ読み込む
	if cmd == CommandHealthcheck {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return runHealthcheck(cfg.ServerPort)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return runServe(ctx, cfg, w)
}

// Server はワイヤリング済みのHTTPサーバーとその後片付けを保持する。
type Server struct {
	HTTP    *http.Server
	logFile io.Closer
}

// Close はログファイルを閉じる。
func (s *Server) Close() error {
	if s.logFile == nil {
		return nil
	}
	return s.logFile.Close()
}

// NewServer はログシンク・メトリクス・ルーターをワイヤリングしたServerを構築する。
// ログは w とログファイルの両方に出力する。
func NewServer(cfg *config.Config, w io.Writer) (*Server, error) {
	// 1. ログファイルの準備（ディレクトリは起動時に作成する）
	f, err := logger.OpenFile(cfg.LogDir, cfg.LogFile)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stdout
	}
	appLogger := logger.SetupDefault(io.MultiWriter(w, f))

	// 2. ドメインサービスの初期化
	userRepo := repository.NewStaticUserRepo(repository.DefaultUsers())
	deps := &handler.RouterDeps{
		Logger:         appLogger,
		AddressService: address.NewService(config.EnvResolver{}),
		UserService:    user.NewService(userRepo),
	}

	// 3. メトリクスの初期化
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		deps.Metrics = metrics.NewCollector(reg)
		deps.MetricsGatherer = reg
	}

	// 4. ルーターとHTTPサーバーの構築
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler.NewRouter(deps),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Server{HTTP: server, logFile: f}, nil
}

// runServe はAPIサーバーモードで起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config, w io.Writer) error {
	srv, err := NewServer(cfg, w)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}
	defer srv.Close()

	ln, err := net.Listen("tcp", srv.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.HTTP.Addr, err)
	}

	return serve(ctx, srv.HTTP, ln, cfg.ShutdownTimeout)
}

// serve はlnでHTTPサーバーを起動し、ctxのキャンセルまでブロックする。
func serve(ctx context.Context, server *http.Server, ln net.Listener, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", ln.Addr().String()),
		)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	return checkHealth(fmt.Sprintf("http://localhost:%s/health", port))
}

func checkHealth(url string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
