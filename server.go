package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/keygen"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"

	"github.com/imjasonh/kingcapture/lobby"
)

// hostKeyOption returns the wish option carrying the server's host key:
// generated on disk with -local, otherwise read from Secret Manager.
func hostKeyOption(ctx context.Context, cfg Config, logger *log.Logger) (ssh.Option, error) {
	if cfg.Local {
		if err := os.MkdirAll(filepath.Dir(cfg.HostKeyPath), 0700); err != nil {
			return nil, fmt.Errorf("failed to create key directory: %w", err)
		}
		if _, err := os.Stat(cfg.HostKeyPath); errors.Is(err, os.ErrNotExist) {
			logger.Info("generating SSH host key", "path", cfg.HostKeyPath)
			if _, err := keygen.New(cfg.HostKeyPath, keygen.WithKeyType(keygen.Ed25519), keygen.WithWrite()); err != nil {
				return nil, fmt.Errorf("failed to generate host key: %w", err)
			}
		}
		logger.Info("running in local mode")
		return wish.WithHostKeyPath(cfg.HostKeyPath), nil
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}
	defer client.Close()
	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: cfg.HostKeySecret,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to access secret version: %w", err)
	}
	logger.Info("running in cloud mode with Secret Manager")
	return wish.WithHostKeyPEM(resp.Payload.Data), nil
}

func newSSHServer(cfg Config, manager *lobby.Manager, logger *log.Logger, hostKey ssh.Option) (*ssh.Server, error) {
	return wish.NewServer(
		wish.WithAddress(fmt.Sprintf(":%d", cfg.SSHPort)),
		hostKey,
		wish.WithMiddleware(
			bubbletea.Middleware(teaHandler(cfg, manager, logger)),
			logging.MiddlewareWithLogger(logger),
		),
	)
}

func teaHandler(cfg Config, manager *lobby.Manager, logger *log.Logger) bubbletea.Handler {
	return func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
		renderer := bubbletea.MakeRenderer(s)
		opts := []tea.ProgramOption{tea.WithAltScreen()}

		if cfg.Hotseat {
			return newHotseatModel(logger.With("user", s.User()), renderer), opts
		}

		player := lobby.NewPlayer(s.User())
		m := newOnlineModel(manager, player, logger, renderer)
		if err := manager.Enqueue(player); err != nil {
			logger.Error("failed to queue player", "player", player.ID, "err", err)
		}

		// Updates is left open: a session may still be publishing to it.
		go func() {
			<-s.Context().Done()
			manager.Remove(player.ID)
			logger.Info("player left", "player", player.ID, "name", player.Name)
		}()

		return m, opts
	}
}
