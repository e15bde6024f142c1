package supabase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientUnconfigured(t *testing.T) {
	assert.Nil(t, NewClient("", "key"))
	assert.Nil(t, NewClient("https://x.supabase.co", ""))
	assert.Nil(t, NewClient("https://your-project.supabase.co", "key"))
	assert.NotNil(t, NewClient("https://real.supabase.co/", "key"))
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	client := NewClient("https://real.supabase.co/", "key")
	require.NotNil(t, client)
	assert.Equal(t, "https://real.supabase.co", client.BaseURL)
}

func TestSignInWithPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "tok", "refresh_token": "ref", "user": {"id": "u1", "email": "a@x.test"}}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "key")

	session, err := client.SignInWithPassword(context.Background(), "a@x.test", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", session.AccessToken)
	assert.Equal(t, "a@x.test", session.User.Email)
}

func TestSignInMissingTokenFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "key")

	_, err := client.SignInWithPassword(context.Background(), "a@x.test", "pw")
	require.Error(t, err)

	authErr, ok := err.(*AuthError)
	require.True(t, ok)
	assert.Equal(t, "Login failed", authErr.Message)
}

func TestSignUpResponseShapes(t *testing.T) {
	// Bare user object.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "u2", "email": "new@x.test"}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "key")
	user, err := client.SignUp(context.Background(), "new@x.test", "pw", map[string]interface{}{"role": "patient"})
	require.NoError(t, err)
	assert.Equal(t, "u2", user.ID)

	// Session wrapping the user.
	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token": "tok", "user": {"id": "u3", "email": "other@x.test"}}`))
	}))
	t.Cleanup(srv2.Close)

	client = NewClient(srv2.URL, "key")
	user, err = client.SignUp(context.Background(), "other@x.test", "pw", nil)
	require.NoError(t, err)
	assert.Equal(t, "u3", user.ID)
}

func TestErrorMessagePrecedence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"msg": "Password should be at least 6 characters"}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "key")

	_, err := client.SignUp(context.Background(), "a@x.test", "x", nil)
	require.Error(t, err)
	assert.Equal(t, "Password should be at least 6 characters", err.Error())
}
