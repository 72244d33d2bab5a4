// Package config loads the Zendesk API credentials from an env file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultCredsFile is the credentials file looked up when no path is given.
const DefaultCredsFile = "credentials.env"

// ErrMissingCredentials marks a missing or incomplete credentials file.
var ErrMissingCredentials = errors.New("missing credentials")

// CredsHint is printed alongside credential errors so the operator can fix
// the file without consulting the docs.
const CredsHint = `create a credentials env file with the following contents:

ZENDESK_SUBDOMAIN=<Your Subdomain>
ZENDESK_EMAIL=<Your Email>
ZENDESK_API_TOKEN=<Your Token>`

// Credentials holds the static API credential set. All three values are
// required; the token authenticates as "<email>/token" via HTTP basic auth.
type Credentials struct {
	Subdomain string `env:"ZENDESK_SUBDOMAIN" env-required:"true"`
	Email     string `env:"ZENDESK_EMAIL" env-required:"true"`
	APIToken  string `env:"ZENDESK_API_TOKEN" env-required:"true"`
}

// BaseURL returns the tenant's API base URL.
func (c *Credentials) BaseURL() string {
	return fmt.Sprintf("https://%s.zendesk.com", c.Subdomain)
}

// Load reads credentials from the env file at path (DefaultCredsFile when
// empty). A missing file or a missing key is a fatal configuration error.
func Load(path string) (*Credentials, error) {
	if path == "" {
		path = DefaultCredsFile
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: credentials file %s not found; %s", ErrMissingCredentials, path, CredsHint)
	}

	var creds Credentials
	if err := cleanenv.ReadConfig(path, &creds); err != nil {
		return nil, fmt.Errorf("%w: %s is incomplete (%v); %s", ErrMissingCredentials, path, err, CredsHint)
	}

	return &creds, nil
}
