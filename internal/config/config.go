package config

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	EnvAPIKey  = "VIDU_API_KEY"
	EnvAPIBase = "VIDU_API_BASE"

	DefaultAPIBase = "https://api.vidu.com/ent/v2"
)

var ErrMissingAPIKey = errors.New("VIDU_API_KEY is not set; create a .env file or export it in your shell")

type Config struct {
	APIKey  string
	BaseURL string

	// EnvFile is the .env file that was loaded, if any.
	EnvFile string
}

// Load resolves the API credential and base URL for one process invocation.
// A .env file discovered from the working directory upward is merged into
// the environment first; real environment variables always win.
func Load() (Config, error) {
	cfg := Config{}

	if path, ok := findEnvFile(); ok {
		cfg.EnvFile = path
		if err := loadEnvFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.APIKey = strings.TrimSpace(os.Getenv(EnvAPIKey))
	if cfg.APIKey == "" {
		return Config{}, ErrMissingAPIKey
	}

	cfg.BaseURL = normalizeBaseURL(os.Getenv(EnvAPIBase))
	return cfg, nil
}

func normalizeBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		base = DefaultAPIBase
	}
	return strings.TrimRight(base, "/")
}

func findEnvFile() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, ".env")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// loadEnvFile applies KEY=VALUE lines from a .env file without overriding
// variables already present in the process environment.
func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open env file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := parseEnvLine(scanner.Text())
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("set %s from %s: %w", key, path, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read env file %s: %w", path, err)
	}
	return nil
}

func parseEnvLine(raw string) (key, value string, ok bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")

	eq := strings.Index(line, "=")
	if eq <= 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:eq])
	value = strings.TrimSpace(line[eq+1:])
	if key == "" {
		return "", "", false
	}
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') || (value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
	}
	return key, value, true
}

type DoctorResult struct {
	OK     bool          `json:"ok"`
	Checks []DoctorCheck `json:"checks"`
}

type DoctorCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Doctor runs preflight checks for the CLI: credential present, base URL
// sane, plus an informational note about .env discovery.
func Doctor() DoctorResult {
	checks := make([]DoctorCheck, 0, 3)

	envFile, envFound := findEnvFile()
	message := "no .env file found (using process environment only)"
	if envFound {
		message = fmt.Sprintf("loaded from %s", envFile)
		if err := loadEnvFile(envFile); err != nil {
			message = err.Error()
		}
	}
	checks = append(checks, DoctorCheck{
		Name:    "config:env-file",
		OK:      true,
		Message: message,
	})

	apiKey := strings.TrimSpace(os.Getenv(EnvAPIKey))
	keyCheck := DoctorCheck{Name: "config:api-key"}
	if apiKey == "" {
		keyCheck.Message = EnvAPIKey + " is not set"
	} else {
		keyCheck.OK = true
		keyCheck.Message = EnvAPIKey + " is set (" + maskKey(apiKey) + ")"
	}
	checks = append(checks, keyCheck)

	base := normalizeBaseURL(os.Getenv(EnvAPIBase))
	baseCheck := DoctorCheck{Name: "config:api-base"}
	if u, err := url.Parse(base); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		baseCheck.Message = fmt.Sprintf("invalid base URL %q", base)
	} else {
		baseCheck.OK = true
		baseCheck.Message = base
	}
	checks = append(checks, baseCheck)

	ok := true
	for _, c := range checks {
		if !c.OK {
			ok = false
			break
		}
	}
	return DoctorResult{OK: ok, Checks: checks}
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
