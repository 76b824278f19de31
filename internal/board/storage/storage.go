// Package storage uploads user files (resumes, avatars, logos) to the
// external object store. Paths are keyed {ownerID}/{filename}; an
// upload to an existing path overwrites it.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// ObjectStore is the file-storage surface the services depend on.
type ObjectStore interface {
	// Upload writes the object and returns its public URL.
	Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error)
	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error
}

// HTTPStore talks to the object store's REST surface: PUT to write,
// DELETE to remove. The store itself handles retention and signing.
type HTTPStore struct {
	baseURL    string
	serviceKey string
	client     *http.Client
	logger     *zap.Logger
}

func NewHTTPStore(baseURL, serviceKey string, logger *zap.Logger) *HTTPStore {
	return &HTTPStore{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		client:     &http.Client{},
		logger:     logger.Named("object_store"),
	}
}

func (s *HTTPStore) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	url := fmt.Sprintf("%s/%s", s.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, r)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("upload failed: status %d", resp.StatusCode)
	}
	return url, nil
}

func (s *HTTPStore) Delete(ctx context.Context, path string) error {
	url := fmt.Sprintf("%s/%s", s.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK &&
		resp.StatusCode != http.StatusNoContent &&
		resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete failed: status %d", resp.StatusCode)
	}
	return nil
}
