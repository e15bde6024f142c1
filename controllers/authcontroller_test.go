package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dgrijalva/jwt-go"

	"github.com/SKYTAN-050107/UM-INTERNAL-HACKATHON-NOV/supabase"
)

func fakeAuthServer(t *testing.T, handler http.HandlerFunc) *supabase.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := supabase.NewClient(srv.URL, "anon-key")
	if client == nil {
		t.Fatal("expected client for configured url")
	}
	return client
}

func TestLoginMissingCredentials(t *testing.T) {
	aController := &AuthController{}

	recorder := httptest.NewRecorder()
	aController.Login(recorder, jsonRequest("POST", "/api/login", `{"email": "a@x.test"}`))

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
	if body := decodeBody(t, recorder); body["message"] != "Missing credentials" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestLoginUnconfiguredRole(t *testing.T) {
	aController := &AuthController{}

	recorder := httptest.NewRecorder()
	aController.Login(recorder, jsonRequest("POST", "/api/login",
		`{"email": "a@x.test", "password": "pw", "role": "staff"}`))

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
	if body := decodeBody(t, recorder); body["message"] != "Supabase not configured for staff." {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestLoginSuccess(t *testing.T) {
	client := fakeAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("grant_type") != "password" {
			t.Fatalf("unexpected grant type %q", r.URL.Query().Get("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "tok", "user": {"id": "u1", "email": "a@x.test"}}`))
	})

	aController := &AuthController{PatientClient: client}

	recorder := httptest.NewRecorder()
	aController.Login(recorder, jsonRequest("POST", "/api/login",
		`{"email": "a@x.test", "password": "pw", "role": "patient"}`))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	body := decodeBody(t, recorder)
	user, _ := body["user"].(map[string]interface{})
	if user["email"] != "a@x.test" || user["role"] != "patient" || user["access_token"] != "tok" {
		t.Fatalf("unexpected user payload: %s", recorder.Body.String())
	}
}

func TestLoginRejected(t *testing.T) {
	client := fakeAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_description": "Invalid login credentials"}`))
	})

	aController := &AuthController{PatientClient: client}

	recorder := httptest.NewRecorder()
	aController.Login(recorder, jsonRequest("POST", "/api/login",
		`{"email": "a@x.test", "password": "wrong", "role": "patient"}`))

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
	if body := decodeBody(t, recorder); body["message"] != "Invalid login credentials" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestSignupSuccess(t *testing.T) {
	client := fakeAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/signup" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "u2", "email": "new@x.test"}`))
	})

	aController := &AuthController{PatientClient: client}

	recorder := httptest.NewRecorder()
	aController.Signup(recorder, jsonRequest("POST", "/api/signup",
		`{"email": "new@x.test", "password": "pw", "role": "patient"}`))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if body := decodeBody(t, recorder); body["message"] != "User created. Please check email for confirmation." {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestBearerEmail(t *testing.T) {
	aController := &AuthController{JWTSecret: "secret"}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "a@x.test"})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/chat", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	if email := aController.BearerEmail(req); email != "a@x.test" {
		t.Fatalf("expected claim email, got %q", email)
	}

	// A token signed with the wrong key is ignored.
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "evil@x.test"}).
		SignedString([]byte("other"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+forged)

	if email := aController.BearerEmail(req); email != "" {
		t.Fatalf("expected forged token rejected, got %q", email)
	}

	// No header at all.
	req.Header.Del("Authorization")
	if email := aController.BearerEmail(req); email != "" {
		t.Fatalf("expected no email without header, got %q", email)
	}
}
