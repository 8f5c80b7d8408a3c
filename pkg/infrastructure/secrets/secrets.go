package secrets

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// SecretsAdapter resolves named secrets from Google Secret Manager.
type SecretsAdapter struct {
	Client *secretmanager.Client
}

// GetSecret returns the latest version of the named secret as a string.
func (a *SecretsAdapter) GetSecret(ctx context.Context, projectID, name string) (string, error) {
	req := &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, name),
	}
	result, err := a.Client.AccessSecretVersion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("access secret %s: %w", name, err)
	}
	return string(result.Payload.Data), nil
}
