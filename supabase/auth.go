package supabase

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

// Client wraps the auth provider's REST surface for one project. Two
// instances exist at runtime, one per role (patient and staff projects);
// an unconfigured role simply gets a nil client.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient returns nil when the project is not configured, matching the
// "degrade the role to unavailable" contract. Placeholder URLs left over
// from templates are treated as unconfigured.
func NewClient(baseURL string, apiKey string) *Client {
	if baseURL == "" || apiKey == "" || strings.Contains(baseURL, "your-project") {
		return nil
	}

	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// AuthError is a rejected auth call; Message carries the provider's own
// wording so the frontend shows the same text it always has.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

// SignInWithPassword performs the password grant and returns the session
// with its access token.
func (c *Client) SignInWithPassword(ctx context.Context, email string, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}

	session := &Session{}
	err := c.post(ctx, "/auth/v1/token?grant_type=password", body, session)
	if err != nil {
		return nil, err
	}
	if session.AccessToken == "" {
		return nil, &AuthError{Status: http.StatusUnauthorized, Message: "Login failed"}
	}
	return session, nil
}

// SignUp registers a new user; metadata lands in the user's profile (the
// requested role is stored there).
func (c *Client) SignUp(ctx context.Context, email string, password string, metadata map[string]interface{}) (*User, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
	}
	if metadata != nil {
		body["data"] = metadata
	}

	// Depending on the confirmation settings the provider answers with the
	// bare user object or a session wrapping it.
	var payload struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		User  *User  `json:"user"`
	}
	if err := c.post(ctx, "/auth/v1/signup", body, &payload); err != nil {
		return nil, err
	}

	if payload.User != nil && payload.User.ID != "" {
		return payload.User, nil
	}
	if payload.ID != "" {
		return &User{ID: payload.ID, Email: payload.Email}, nil
	}
	return nil, &AuthError{Status: http.StatusBadRequest, Message: "Signup failed"}
}

func (c *Client) post(ctx context.Context, endpoint string, body interface{}, out interface{}) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+endpoint, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return &AuthError{Status: resp.StatusCode, Message: errorMessage(raw, resp.StatusCode)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("supabase: malformed response: %w", err)
		}
	}
	return nil
}

func errorMessage(raw []byte, status int) string {
	var payload struct {
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.ErrorDescription != "" {
			return payload.ErrorDescription
		}
		if payload.Msg != "" {
			return payload.Msg
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return fmt.Sprintf("auth request failed with status %d", status)
}
