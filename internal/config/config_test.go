package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// chdir stands in for t.Chdir, which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}

func TestLoadRequiresAPIKey(t *testing.T) {
	tmp := t.TempDir()
	chdir(t, tmp)
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvAPIBase, "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected missing credential error")
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	tmp := t.TempDir()
	chdir(t, tmp)
	t.Setenv(EnvAPIKey, "vda_test_key")
	t.Setenv(EnvAPIBase, "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIKey != "vda_test_key" {
		t.Fatalf("unexpected api key %q", cfg.APIKey)
	}
	if cfg.BaseURL != DefaultAPIBase {
		t.Fatalf("expected default base URL, got %q", cfg.BaseURL)
	}

	t.Setenv(EnvAPIBase, "https://example.com/api/v2/")
	cfg, err = Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BaseURL != "https://example.com/api/v2" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.BaseURL)
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	tmp := t.TempDir()
	envFile := filepath.Join(tmp, ".env")
	content := "# credentials\nexport VIDU_API_KEY=\"from-dotenv\"\nVIDU_API_BASE=https://dotenv.example/v2\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	nested := filepath.Join(tmp, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	chdir(t, nested)
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvAPIBase, "")
	os.Unsetenv(EnvAPIKey)
	os.Unsetenv(EnvAPIBase)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIKey != "from-dotenv" {
		t.Fatalf("expected key from .env, got %q", cfg.APIKey)
	}
	if cfg.BaseURL != "https://dotenv.example/v2" {
		t.Fatalf("expected base from .env, got %q", cfg.BaseURL)
	}
	if cfg.EnvFile != envFile {
		t.Fatalf("expected env file %s, got %s", envFile, cfg.EnvFile)
	}
}

func TestEnvFileDoesNotOverrideEnvironment(t *testing.T) {
	tmp := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmp, ".env"), []byte("VIDU_API_KEY=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	chdir(t, tmp)
	t.Setenv(EnvAPIKey, "from-shell")
	t.Setenv(EnvAPIBase, "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIKey != "from-shell" {
		t.Fatalf("environment should win over .env, got %q", cfg.APIKey)
	}
}

func TestParseEnvLine(t *testing.T) {
	cases := []struct {
		raw   string
		key   string
		value string
		ok    bool
	}{
		{"KEY=value", "KEY", "value", true},
		{"export KEY=value", "KEY", "value", true},
		{"KEY='single quoted'", "KEY", "single quoted", true},
		{`KEY="double quoted"`, "KEY", "double quoted", true},
		{"KEY=", "KEY", "", true},
		{"# comment", "", "", false},
		{"", "", "", false},
		{"=value", "", "", false},
		{"no equals sign", "", "", false},
	}

	for _, tc := range cases {
		key, value, ok := parseEnvLine(tc.raw)
		if ok != tc.ok || key != tc.key || value != tc.value {
			t.Fatalf("parseEnvLine(%q) = (%q, %q, %t), want (%q, %q, %t)", tc.raw, key, value, ok, tc.key, tc.value, tc.ok)
		}
	}
}

func TestDoctorReportsMissingKey(t *testing.T) {
	tmp := t.TempDir()
	chdir(t, tmp)
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvAPIBase, "")
	os.Unsetenv(EnvAPIKey)

	res := Doctor()
	if res.OK {
		t.Fatalf("expected doctor failure without credential")
	}
	found := false
	for _, c := range res.Checks {
		if c.Name == "config:api-key" && !c.OK {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected failing api-key check, got %+v", res.Checks)
	}
}

func TestDoctorMasksKey(t *testing.T) {
	tmp := t.TempDir()
	chdir(t, tmp)
	t.Setenv(EnvAPIKey, "vda_0123456789abcdef")
	t.Setenv(EnvAPIBase, "")

	res := Doctor()
	if !res.OK {
		t.Fatalf("expected doctor to pass: %+v", res.Checks)
	}
	for _, c := range res.Checks {
		if c.Name != "config:api-key" {
			continue
		}
		if !c.OK {
			t.Fatalf("api-key check failed: %s", c.Message)
		}
		if want := "vda_...cdef"; !strings.Contains(c.Message, want) {
			t.Fatalf("expected masked key %q in message %q", want, c.Message)
		}
		if strings.Contains(c.Message, "0123456789") {
			t.Fatalf("full key leaked into message %q", c.Message)
		}
	}
}
