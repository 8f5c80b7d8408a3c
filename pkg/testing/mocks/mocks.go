// Package mocks provides hand-rolled test doubles for the service
// interfaces. Behavior is injected per-test through function fields; calls
// without a configured function fall back to benign defaults.
package mocks

import (
	"context"
	"errors"

	shared "github.com/bndxn/secure-app/pkg"
	"github.com/bndxn/secure-app/pkg/garmin"
)

// WrittenObject records one blob write for later assertions.
type WrittenObject struct {
	Bucket string
	Object string
	Data   []byte
}

// MockBlobStore implements shared.BlobStore.
type MockBlobStore struct {
	WriteFunc func(ctx context.Context, bucket, object string, data []byte) error
	ReadFunc  func(ctx context.Context, bucket, object string) ([]byte, error)
	ListFunc  func(ctx context.Context, bucket, prefix string) ([]shared.ObjectInfo, error)

	Writes []WrittenObject
}

func (m *MockBlobStore) Write(ctx context.Context, bucket, object string, data []byte) error {
	m.Writes = append(m.Writes, WrittenObject{Bucket: bucket, Object: object, Data: data})
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, bucket, object, data)
	}
	return nil
}

func (m *MockBlobStore) Read(ctx context.Context, bucket, object string) ([]byte, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, bucket, object)
	}
	return nil, errors.New("object not found")
}

func (m *MockBlobStore) List(ctx context.Context, bucket, prefix string) ([]shared.ObjectInfo, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, bucket, prefix)
	}
	return nil, nil
}

// MockSecretStore implements shared.SecretStore.
type MockSecretStore struct {
	GetSecretFunc func(ctx context.Context, projectID, name string) (string, error)
}

func (m *MockSecretStore) GetSecret(ctx context.Context, projectID, name string) (string, error) {
	if m.GetSecretFunc != nil {
		return m.GetSecretFunc(ctx, projectID, name)
	}
	return "", errors.New("secret not found")
}

// MockModel implements coach.ModelInvoker.
type MockModel struct {
	GenerateFunc func(ctx context.Context, prompt string, maxOutputTokens int32) (string, error)

	Prompts []string
}

func (m *MockModel) Generate(ctx context.Context, prompt string, maxOutputTokens int32) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, maxOutputTokens)
	}
	return "", errors.New("no model response configured")
}

// MockGarminAPI implements garmin.API.
type MockGarminAPI struct {
	LoginFunc    func(ctx context.Context) error
	ListFunc     func(ctx context.Context, start, limit int) ([]garmin.Activity, error)
	DownloadFunc func(ctx context.Context, activityID int64, format garmin.DownloadFormat) ([]byte, error)

	LogoutCalls int
}

func (m *MockGarminAPI) Login(ctx context.Context) error {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx)
	}
	return nil
}

func (m *MockGarminAPI) ListActivities(ctx context.Context, start, limit int) ([]garmin.Activity, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, start, limit)
	}
	return nil, nil
}

func (m *MockGarminAPI) DownloadActivity(ctx context.Context, activityID int64, format garmin.DownloadFormat) ([]byte, error) {
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, activityID, format)
	}
	return nil, errors.New("no download configured")
}

func (m *MockGarminAPI) Logout(ctx context.Context) {
	m.LogoutCalls++
}
