package flow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// CloudClient validates account credentials against the vendor cloud.
type CloudClient interface {
	Authenticate(ctx context.Context, username, password string) error
}

var (
	ErrInvalidAuth   = errors.New("invalid credentials")
	ErrCannotConnect = errors.New("cannot connect to cloud endpoint")
)

type httpCloudClient struct {
	endpoint string
	http     *http.Client
}

func NewCloudClient(endpoint string) CloudClient {
	return &httpCloudClient{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *httpCloudClient) Authenticate(ctx context.Context, username, password string) error {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/authenticate", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCannotConnect, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrInvalidAuth
	default:
		return fmt.Errorf("%w: status %d", ErrCannotConnect, resp.StatusCode)
	}
}

// TestCloudClient accepts a single configured credential pair. When
// Unreachable is set every call fails with a connection error.
type TestCloudClient struct {
	Username    string
	Password    string
	Unreachable bool

	AuthCalls int
}

func (c *TestCloudClient) Authenticate(_ context.Context, username, password string) error {
	c.AuthCalls++
	if c.Unreachable {
		return ErrCannotConnect
	}
	if username != c.Username || password != c.Password {
		return ErrInvalidAuth
	}
	return nil
}
