package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"xiangqi/internal/config"
	"xiangqi/internal/engine"
	"xiangqi/internal/logging"
	servergame "xiangqi/internal/server/game"
	httpserver "xiangqi/internal/server/http"
)

const shutdownGrace = 5 * time.Second

func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default: // linux / bsd
		cmd = exec.Command("xdg-open", url)
	}

	_ = cmd.Start() // 不阻塞，不关心错误（服务器环境可能没有图形界面）
}

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "xiangqi-server:", err)
		os.Exit(2)
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	mgr := servergame.NewManager(servergame.Options{
		Engine:         engine.NewEngine(cfg.TTSize),
		SearchDepth:    cfg.SearchDepth,
		SearchTimeout:  cfg.SearchTimeout,
		CheckMateDepth: cfg.CheckMateDepth,
		Logger:         log.With().Str("component", "games").Logger(),
	})
	hub := httpserver.NewHub(log.With().Str("component", "ws").Logger())
	mgr.SetPublisher(hub)

	h := httpserver.NewHandler(mgr, hub, log)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpserver.NewRouter(h, cfg.WebDir, cfg.MobileWebDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	log.Info().
		Str("addr", ln.Addr().String()).
		Str("web", cfg.WebDir).
		Int("depth", cfg.SearchDepth).
		Dur("timeout", cfg.SearchTimeout).
		Msg("listening")

	if cfg.OpenBrowser {
		// 端口已经绑定，直接打开
		go openBrowser("http://127.0.0.1" + portSuffix(ln.Addr()))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		if cfg.SessionIdleTTL > 0 {
			mgr.RunPruner(gctx, cfg.SessionIdleTTL/4, cfg.SessionIdleTTL)
		}
		return nil
	})
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

func portSuffix(a net.Addr) string {
	if tcp, ok := a.(*net.TCPAddr); ok {
		return fmt.Sprintf(":%d", tcp.Port)
	}
	return ""
}
