package main

import (
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/imjasonh/kingcapture/lobby"
)

type Config struct {
	SSHPort        int
	APIPort        int
	ProxyPort      string // WebSocket->SSH proxy, from $PORT
	Local          bool
	HostKeyPath    string
	HostKeySecret  string
	Hotseat        bool
	AllowedOrigins string
	IdleTimeout    time.Duration
	LogLevel       log.Level
}

// LoadConfig parses flags from args. Environment variables fill in values the
// flags leave at their defaults.
func LoadConfig(args []string, getenv func(string) string) (Config, error) {
	var (
		cfg      Config
		logLevel string
	)
	fs := flag.NewFlagSet("kingcapture", flag.ContinueOnError)
	fs.IntVar(&cfg.SSHPort, "port", 2222, "SSH server port")
	fs.IntVar(&cfg.APIPort, "api-port", 0, "HTTP/WebSocket game API port (0 disables it; env API_PORT)")
	fs.BoolVar(&cfg.Local, "local", false, "run in local mode (generates/uses local host key instead of Secret Manager)")
	fs.StringVar(&cfg.HostKeyPath, "host-key", ".ssh/kingcapture_host_key", "host key path in local mode")
	fs.BoolVar(&cfg.Hotseat, "hotseat", false, "play both sides in one session instead of matchmaking")
	fs.StringVar(&cfg.AllowedOrigins, "allowed-origins", "*", "CORS origins for the game API")
	fs.DurationVar(&cfg.IdleTimeout, "idle-timeout", lobby.DefaultIdleTimeout, "close games nobody has watched or played for this long (0 keeps them)")
	fs.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.ProxyPort = getenv("PORT")
	cfg.HostKeySecret = getenv("SSH_HOST_KEY_SECRET")
	if cfg.APIPort == 0 {
		if v := getenv("API_PORT"); v != "" {
			port, err := strconv.Atoi(v)
			if err != nil {
				return Config{}, fmt.Errorf("API_PORT %q: %w", v, err)
			}
			cfg.APIPort = port
		}
	}
	if logLevel == "" {
		logLevel = getenv("LOG_LEVEL")
	}
	if logLevel == "" {
		logLevel = "info"
	}
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return Config{}, fmt.Errorf("log level: %w", err)
	}
	cfg.LogLevel = level

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.SSHPort <= 0 || c.SSHPort > 65535 {
		return fmt.Errorf("invalid SSH port %d", c.SSHPort)
	}
	if c.APIPort < 0 || c.APIPort > 65535 {
		return fmt.Errorf("invalid API port %d", c.APIPort)
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("invalid idle timeout %s", c.IdleTimeout)
	}
	if c.APIPort != 0 && c.APIPort == c.SSHPort {
		return fmt.Errorf("API port %d collides with the SSH port", c.APIPort)
	}
	if !c.Local && c.HostKeySecret == "" {
		return fmt.Errorf("SSH_HOST_KEY_SECRET must be set unless -local is used")
	}
	return nil
}
