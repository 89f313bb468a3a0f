package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")

	content := `
# comment line
WEATHER_TEST_KEY=abc123
QUOTED_KEY="quoted value"
SINGLE_QUOTED='single'
MALFORMED LINE
`
	if err := os.WriteFile(envPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("WEATHER_TEST_KEY", "")
	os.Unsetenv("WEATHER_TEST_KEY")
	os.Unsetenv("QUOTED_KEY")
	os.Unsetenv("SINGLE_QUOTED")

	if err := loadEnvFile(envPath); err != nil {
		t.Fatalf("loadEnvFile failed: %v", err)
	}

	if got := os.Getenv("WEATHER_TEST_KEY"); got != "abc123" {
		t.Errorf("expected abc123, got %q", got)
	}
	if got := os.Getenv("QUOTED_KEY"); got != "quoted value" {
		t.Errorf("expected quoted value, got %q", got)
	}
	if got := os.Getenv("SINGLE_QUOTED"); got != "single" {
		t.Errorf("expected single, got %q", got)
	}
}

func TestLoadEnvFile_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")

	if err := os.WriteFile(envPath, []byte("EXISTING_KEY=from_file\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("EXISTING_KEY", "from_env")

	if err := loadEnvFile(envPath); err != nil {
		t.Fatal(err)
	}

	if got := os.Getenv("EXISTING_KEY"); got != "from_env" {
		t.Errorf("env var should win over .env file, got %q", got)
	}
}

func TestGetEnvWithFallback(t *testing.T) {
	t.Setenv("FALLBACK_B", "value_b")

	if got := GetEnvWithFallback("FALLBACK_A", "FALLBACK_B"); got != "value_b" {
		t.Errorf("expected value_b, got %q", got)
	}
	if got := GetEnvWithFallback("FALLBACK_NOPE"); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestResolveEnvWithAliases(t *testing.T) {
	os.Unsetenv("WEATHER_API_KEY")
	t.Setenv("OPENWEATHER_API_KEY", "alias_key")

	if got := ResolveEnvWithAliases("WEATHER_API_KEY"); got != "alias_key" {
		t.Errorf("expected alias_key, got %q", got)
	}
}

func TestGetRequiredEnv(t *testing.T) {
	os.Unsetenv("REQUIRED_MISSING")

	_, err := GetRequiredEnv("REQUIRED_MISSING")
	if err == nil {
		t.Fatal("expected error for missing env var")
	}

	var missing *MissingEnvError
	if me, ok := err.(*MissingEnvError); !ok || me.Key != "REQUIRED_MISSING" {
		t.Errorf("expected MissingEnvError with key, got %v (%T)", err, missing)
	}
}
