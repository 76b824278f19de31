package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// lookupTimeout bounds the admin-API round trip. On expiry the caller
// gets a placeholder record, never an error.
const lookupTimeout = 5 * time.Second

// User is the identity provider's view of a principal.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Directory reads user records from the identity provider's admin API.
// The provider owns credentials and sessions; this client only looks up
// display data.
type Directory struct {
	baseURL    string
	serviceKey string
	client     *http.Client
	logger     *zap.Logger
}

func NewDirectory(baseURL, serviceKey string, logger *zap.Logger) *Directory {
	return &Directory{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		client:     &http.Client{},
		logger:     logger.Named("directory"),
	}
}

// LookupUser fetches the identity record for userID. Failures and
// timeouts degrade to a placeholder so rendering never blocks on the
// provider.
func (d *Directory) LookupUser(ctx context.Context, userID string) *User {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	user, err := d.fetch(ctx, userID)
	if err != nil {
		d.logger.Warn("directory lookup failed, using placeholder",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return &User{ID: userID, Email: "unknown", Name: "Unknown User"}
	}
	return user
}

func (d *Directory) fetch(ctx context.Context, userID string) (*User, error) {
	url := fmt.Sprintf("%s/admin/users/%s", d.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+d.serviceKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory returned status %d", resp.StatusCode)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}
