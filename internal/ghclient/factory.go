// Package ghclient builds authenticated GitHub API clients and issues the
// alert state changes the policy engine asks for.
package ghclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v66/github"

	"github.com/mr1hm/go-security-alert-watcher/internal/config"
	"github.com/mr1hm/go-security-alert-watcher/internal/policy"
)

var ErrNoCredentials = errors.New("no GitHub credentials configured")

// Factory creates clients authenticated as a GitHub App installation, or with
// a static token when no App credentials are configured.
type Factory struct {
	cfg       config.GitHubConfig
	transport http.RoundTripper
	timeout   time.Duration
}

func NewFactory(cfg config.GitHubConfig) *Factory {
	return &Factory{
		cfg:       cfg,
		transport: http.DefaultTransport,
		timeout:   15 * time.Second,
	}
}

// Client returns a go-github client for installationID. Installation tokens
// are minted and refreshed by ghinstallation.
func (f *Factory) Client(installationID int64) (*github.Client, error) {
	var client *github.Client

	switch {
	case f.cfg.HasAppCredentials() && installationID != 0:
		key := []byte(config.NormalizePrivateKey(f.cfg.PrivateKey))
		itr, err := ghinstallation.New(f.transport, f.cfg.AppID, installationID, key)
		if err != nil {
			return nil, fmt.Errorf("error creating installation transport: %w", err)
		}
		if f.cfg.APIURL != "" {
			itr.BaseURL = strings.TrimSuffix(f.cfg.APIURL, "/")
		}
		client = github.NewClient(&http.Client{Transport: itr, Timeout: f.timeout})
	case f.cfg.Token != "":
		client = github.NewClient(&http.Client{Transport: f.transport, Timeout: f.timeout}).WithAuthToken(f.cfg.Token)
	default:
		return nil, ErrNoCredentials
	}

	if f.cfg.APIURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(f.cfg.APIURL, f.cfg.APIURL)
		if err != nil {
			return nil, fmt.Errorf("error setting API URL: %w", err)
		}
	}
	return client, nil
}

// ForInstallation implements policy.ClientProvider.
func (f *Factory) ForInstallation(_ context.Context, installationID int64) (*policy.Clients, error) {
	client, err := f.Client(installationID)
	if err != nil {
		return nil, err
	}
	return &policy.Clients{
		Teams:  client.Teams,
		Alerts: NewAlertClient(client),
	}, nil
}
