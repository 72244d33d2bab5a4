package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func clearCredsEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"ZENDESK_SUBDOMAIN", "ZENDESK_EMAIL", "ZENDESK_API_TOKEN"} {
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

func writeCreds(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.env")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write credentials file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	clearCredsEnv(t)
	path := writeCreds(t, "ZENDESK_SUBDOMAIN=acme\nZENDESK_EMAIL=agent@acme.test\nZENDESK_API_TOKEN=tok123\n")

	creds, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if creds.Subdomain != "acme" || creds.Email != "agent@acme.test" || creds.APIToken != "tok123" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}
	if got := creds.BaseURL(); got != "https://acme.zendesk.com" {
		t.Fatalf("unexpected base URL: %s", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearCredsEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestLoadIncompleteFile(t *testing.T) {
	clearCredsEnv(t)
	path := writeCreds(t, "ZENDESK_SUBDOMAIN=acme\n")

	_, err := Load(path)
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}
