// ABOUTME: Entry point for the trailhead tours API server
// ABOUTME: Subcommands for serving, first-time setup, and health checks

package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/roamware/trailhead/internal/api"
	"github.com/roamware/trailhead/internal/auth"
	"github.com/roamware/trailhead/internal/config"
	"github.com/roamware/trailhead/internal/ratelimit"
	"github.com/roamware/trailhead/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
  _             _ _ _                    _
 | |_ _ __ __ _(_) | |__   ___  __ _  __| |
 | __| '__/ _' | | | '_ \ / _ \/ _' |/ _' |
 | |_| | | (_| | | | | | |  __/ (_| | (_| |
  \__|_|  \__,_|_|_|_| |_|\___|\__,_|\__,_|
`

// getConfigPath returns the path to the server config file.
// Priority: TRAILHEAD_CONFIG env var > XDG_CONFIG_HOME/trailhead/trailhead.yaml > ~/.config/trailhead/trailhead.yaml
func getConfigPath() string {
	if envPath := os.Getenv("TRAILHEAD_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "trailhead.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "trailhead", "trailhead.yaml")
}

// getDataPath returns the path to the trailhead data directory.
// Priority: XDG_DATA_HOME/trailhead > ~/.local/share/trailhead
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "trailhead")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: trailhead <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                              Start the API server")
		fmt.Println("  init                               Create a config file with a fresh secret")
		fmt.Println("  bootstrap --name NAME --email ADDR Create the initial admin account")
		fmt.Println("  health                             Check server health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "bootstrap":
		err = runBootstrap(ctx)
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:   %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:     %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Database: %s\n", cfg.Database.Path)
	if cfg.RateLimit.RedisAddr != "" {
		green.Print("    ▶ ")
		fmt.Printf("Redis:    %s\n", cfg.RateLimit.RedisAddr)
	}
	fmt.Println()

	logger.Info("starting trailhead",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"environment", cfg.Environment,
	)

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	counters, cleanup := buildCounters(ctx, cfg, logger)
	defer cleanup()

	srv, err := api.New(cfg, st, counters, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	go srv.LoginLimiter().Run(ctx, 15*time.Minute)

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// buildCounters selects the rate-limit backend: Redis when configured,
// otherwise in-process counters with a background janitor.
func buildCounters(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ratelimit.CounterStore, func()) {
	if cfg.RateLimit.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RateLimit.RedisAddr})
		logger.Info("rate limiting via redis", "addr", cfg.RateLimit.RedisAddr)
		return ratelimit.NewRedisStore(rdb), func() { rdb.Close() }
	}

	mem := ratelimit.NewMemoryStore()
	go mem.Run(ctx, 5*time.Minute)
	return mem, func() {}
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

// runInit writes a starter config file with a freshly generated JWT
// secret. Refuses to overwrite an existing config.
func runInit() error {
	configPath := getConfigPath()
	dataPath := getDataPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config already exists at %s", configPath)
	}

	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return fmt.Errorf("generating secret: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(secretBytes)

	dbPath := filepath.Join(dataPath, "trailhead.db")
	content := fmt.Sprintf(`server:
  http_addr: ":8080"

environment: development

database:
  path: %s

auth:
  jwt_secret: %s
  token_ttl: 24h

ratelimit:
  max: 100
  window: 1h

login:
  rps: 1
  burst: 5

logging:
  level: info
  format: text
`, dbPath, secret)

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Print("✓ ")
	fmt.Printf("Created %s\n", configPath)
	return nil
}

// runBootstrap creates the initial admin account directly in the
// database and prints a token for it. One-command setup:
//
//	trailhead bootstrap --name "Your Name" --email you@example.com
func runBootstrap(ctx context.Context) error {
	var name, email string
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--name" || arg == "-n":
			if i+1 >= len(args) {
				return fmt.Errorf("--name requires a value")
			}
			name = args[i+1]
			i++
		case strings.HasPrefix(arg, "--name="):
			name = strings.TrimPrefix(arg, "--name=")
		case arg == "--email" || arg == "-e":
			if i+1 >= len(args) {
				return fmt.Errorf("--email requires a value")
			}
			email = args[i+1]
			i++
		case strings.HasPrefix(arg, "--email="):
			email = strings.TrimPrefix(arg, "--email=")
		case strings.HasPrefix(arg, "-"):
			return fmt.Errorf("unknown flag: %s", arg)
		default:
			return fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("--name flag is required")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("--email flag is required")
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config (run 'trailhead init' first): %w", err)
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	passwordBytes := make([]byte, 12)
	if _, err := rand.Read(passwordBytes); err != nil {
		return fmt.Errorf("generating password: %w", err)
	}
	password := base64.RawURLEncoding.EncodeToString(passwordBytes)

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	admin := &store.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Role:         store.RoleAdmin,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := st.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}

	verifier, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return err
	}
	token, err := verifier.Generate(admin.ID, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	green.Print("✓ ")
	fmt.Print("Admin account created: ")
	cyan.Println(email)
	fmt.Println()
	fmt.Print("  Password: ")
	yellow.Println(password)
	fmt.Print("  Token:    ")
	yellow.Println(token)
	fmt.Println()
	fmt.Println("Export the token for the admin CLI:")
	fmt.Printf("  export TRAILHEAD_TOKEN=%s\n", token)
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/healthz", hostAddr(cfg.Server.HTTPAddr))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

// hostAddr fills in localhost for listen addresses like ":8080".
func hostAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}
