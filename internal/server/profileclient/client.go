// Package profileclient calls the profile service on behalf of the auth
// service.
package profileclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const createPath = "/api/v1/profiles"

// CreateProfileRequest is the payload of the profile create call.
type CreateProfileRequest struct {
	AuthUserID string `json:"auth_user_id"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

// NewCreateProfileRequest fills FullName from the name parts.
func NewCreateProfileRequest(authUserID, username, firstName, lastName string) CreateProfileRequest {
	return CreateProfileRequest{
		AuthUserID: authUserID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		FullName:   strings.TrimSpace(firstName + " " + lastName),
	}
}

// StatusError is returned for a non-2xx answer.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("profile service returned %d: %s", e.StatusCode, e.Body)
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// New builds a client for the service at baseURL. timeout bounds the whole
// call, connection included.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}
}

// CreateProfile posts req. Any transport failure, timeout or non-2xx status
// is returned as an error; a *StatusError carries the status.
func (c *Client) CreateProfile(ctx context.Context, req CreateProfileRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+createPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("profile service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
