// ABOUTME: Admin CLI for trailhead user and role management
// ABOUTME: Talks to the HTTP API with a bearer token from the environment

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/roamware/trailhead/internal/auth"
	"github.com/roamware/trailhead/internal/config"
)

const banner = `
  _             _ _ _                    _            _           _
 | |_ _ __ __ _(_) | |__   ___  __ _  __| |  ___   __| |_ __ ___ (_)_ __
 | __| '__/ _' | | | '_ \ / _ \/ _' |/ _' | |___| / _' | '_ ' _ \| | '_ \
 | |_| | | (_| | | | | | |  __/ (_| | (_| |      | (_| | | | | | | | | | |
  \__|_|  \__,_|_|_|_| |_|\___|\__,_|\__,_|       \__,_|_| |_| |_|_|_| |_|
`

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	baseURL := os.Getenv("TRAILHEAD_HOST")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	token := os.Getenv("TRAILHEAD_TOKEN")

	cli := &client{baseURL: baseURL, token: token}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "me":
		err = cli.cmdMe()
	case "users":
		err = cli.cmdUsers()
	case "role":
		err = cli.cmdRole(args)
	case "token":
		err = cmdToken(args)
	case "health":
		err = cli.cmdHealth()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: trailhead-admin <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  me                    Show the account behind your token")
	fmt.Println("  users                 List all accounts (admin only)")
	fmt.Println("  role <user-id> <role> Assign a role: user, guide, lead-guide, admin")
	fmt.Println("  token <user-id> [ttl] Mint a token from the local server config")
	fmt.Println("  health                Check server health")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  TRAILHEAD_HOST   Server base URL (default http://localhost:8080)")
	fmt.Println("  TRAILHEAD_TOKEN  Bearer token for authenticated commands")
}

type client struct {
	baseURL string
	token   string
}

// envelope mirrors the API's response shape.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type userInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

func (c *client) do(method, path string, body any) (*envelope, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unexpected response (%d): %s", resp.StatusCode, raw)
	}
	if env.Status != "success" {
		return nil, fmt.Errorf("%s (%d)", env.Message, resp.StatusCode)
	}
	return &env, nil
}

func (c *client) cmdMe() error {
	env, err := c.do(http.MethodGet, "/api/v1/users/me", nil)
	if err != nil {
		return err
	}

	var data struct {
		User userInfo `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Print("You are ")
	cyan.Print(data.User.Name)
	fmt.Printf(" <%s> ", data.User.Email)
	color.Yellow("[%s]", data.User.Role)
	return nil
}

func (c *client) cmdUsers() error {
	env, err := c.do(http.MethodGet, "/api/v1/users", nil)
	if err != nil {
		return err
	}

	var data struct {
		Users []userInfo `json:"users"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tCREATED")
	for _, u := range data.Users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, u.CreatedAt)
	}
	return w.Flush()
}

func (c *client) cmdRole(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: trailhead-admin role <user-id> <role>")
	}
	userID, role := args[0], args[1]

	env, err := c.do(http.MethodPatch, "/api/v1/users/"+userID+"/role",
		map[string]string{"role": role})
	if err != nil {
		return err
	}

	var data struct {
		User userInfo `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Print("✓ ")
	fmt.Printf("%s is now ", data.User.Email)
	color.Yellow("[%s]", data.User.Role)
	return nil
}

// cmdToken mints a token locally from the server's own config, for
// operators with filesystem access to the secret. Defaults to a short
// one-hour TTL.
func cmdToken(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: trailhead-admin token <user-id> [ttl]")
	}
	userID := args[0]

	ttl := time.Hour
	if len(args) == 2 {
		parsed, err := time.ParseDuration(args[1])
		if err != nil {
			return fmt.Errorf("invalid ttl %q: %w", args[1], err)
		}
		ttl = parsed
	}

	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	verifier, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return err
	}
	token, err := verifier.Generate(userID, ttl)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	fmt.Println(token)
	return nil
}

// configPath mirrors the server's config resolution.
func configPath() string {
	if envPath := os.Getenv("TRAILHEAD_CONFIG"); envPath != "" {
		return envPath
	}
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "trailhead.yaml"
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "trailhead", "trailhead.yaml")
}

func (c *client) cmdHealth() error {
	if _, err := c.do(http.MethodGet, "/healthz", nil); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	fmt.Println("healthy")
	return nil
}
