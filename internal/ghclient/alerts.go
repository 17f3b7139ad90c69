package ghclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v66/github"

	"github.com/mr1hm/go-security-alert-watcher/internal/models"
)

const stateOpen = "open"

// AlertClient reopens alerts. It implements policy.AlertReopener.
type AlertClient struct {
	client *github.Client
}

func NewAlertClient(client *github.Client) *AlertClient {
	return &AlertClient{client: client}
}

func (a *AlertClient) Reopen(ctx context.Context, ref models.AlertRef) error {
	var err error
	switch ref.Type {
	case models.AlertTypeCodeScanning:
		_, _, err = a.client.CodeScanning.UpdateAlert(ctx, ref.Owner, ref.Repo, ref.Number,
			&github.CodeScanningAlertState{State: stateOpen})
	case models.AlertTypeSecretScanning:
		_, _, err = a.client.SecretScanning.UpdateAlert(ctx, ref.Owner, ref.Repo, ref.Number,
			&github.SecretScanningAlertUpdateOptions{State: stateOpen})
	case models.AlertTypeDependabot:
		err = a.reopenDependabot(ctx, ref)
	default:
		return fmt.Errorf("unknown alert type %q", ref.Type)
	}
	if err != nil {
		return fmt.Errorf("error updating %s alert state: %w", ref.Type, err)
	}
	return nil
}

// reopenDependabot builds the PATCH by hand so the request pins the API
// version the dependabot alert endpoint was released under.
func (a *AlertClient) reopenDependabot(ctx context.Context, ref models.AlertRef) error {
	u := fmt.Sprintf("repos/%v/%v/dependabot/alerts/%v", ref.Owner, ref.Repo, ref.Number)
	req, err := a.client.NewRequest(http.MethodPatch, u, map[string]string{"state": stateOpen})
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	_, err = a.client.Do(ctx, req, nil)
	return err
}
