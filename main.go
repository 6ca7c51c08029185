package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/gorilla/websocket"
	sshproxy "github.com/imjasonh/ssh-proxy"

	"github.com/imjasonh/kingcapture/api"
	"github.com/imjasonh/kingcapture/lobby"
)

func newLogger(level log.Level) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           level,
		Prefix:          "kingcapture",
	})
}

func main() {
	cfg, err := LoadConfig(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatal("invalid configuration", "err", err)
	}
	logger := newLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server error", "err", err)
	}
}

func run(ctx context.Context, cfg Config, logger *log.Logger) error {
	hostKey, err := hostKeyOption(ctx, cfg, logger)
	if err != nil {
		return err
	}

	manager := lobby.NewManager(logger.WithPrefix("lobby"), lobby.WithIdleTimeout(cfg.IdleTimeout))
	defer manager.Close()

	s, err := newSSHServer(cfg, manager, logger, hostKey)
	if err != nil {
		return err
	}

	errc := make(chan error, 3)
	go func() {
		logger.Info("starting SSH server", "port", cfg.SSHPort, "hotseat", cfg.Hotseat)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errc <- fmt.Errorf("ssh server: %w", err)
		}
	}()

	var apiServer *api.Server
	if cfg.APIPort != 0 {
		apiServer = api.NewServer(manager, logger.WithPrefix("api"), cfg.AllowedOrigins)
		go func() {
			logger.Info("starting game API", "port", cfg.APIPort)
			if err := apiServer.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
				errc <- fmt.Errorf("game API: %w", err)
			}
		}()
	}

	var proxy *http.Server
	if cfg.ProxyPort != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/ssh", sshproxy.ProxyWebSocketToSSH(fmt.Sprintf(":%d", cfg.SSHPort), websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow connections from any origin for now
			},
		}))
		proxy = &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.ProxyPort),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("starting WebSocket to SSH proxy", "port", cfg.ProxyPort)
			if err := proxy.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- fmt.Errorf("proxy: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("stopping servers")
	case err = <-errc:
		logger.Error("server failed, shutting down", "err", err)
	}

	tctx, tcancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer tcancel()
	var errs []error
	if proxy != nil {
		errs = append(errs, proxy.Shutdown(tctx))
	}
	if apiServer != nil {
		errs = append(errs, apiServer.Shutdown(tctx))
	}
	if serr := s.Shutdown(tctx); serr != nil && !errors.Is(serr, ssh.ErrServerClosed) {
		errs = append(errs, serr)
	}
	errs = append(errs, err)
	return errors.Join(errs...)
}
