package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"

	"github.com/SKYTAN-050107/UM-INTERNAL-HACKATHON-NOV/models"
	"github.com/SKYTAN-050107/UM-INTERNAL-HACKATHON-NOV/supabase"
)

// AuthController delegates credential handling to the external auth
// provider. Separate projects back the patient and staff roles; a nil
// client means that role is unavailable.
type AuthController struct {
	PatientClient *supabase.Client
	StaffClient   *supabase.Client
	JWTSecret     string
}

func (aController *AuthController) clientForRole(role string) *supabase.Client {
	if role == "staff" {
		return aController.StaffClient
	}
	return aController.PatientClient
}

func (aController *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	setJSONHeaders(w)

	postMap, err := parseRequestBody(r, w)
	if err != nil {
		return
	}

	email := stringField(postMap, "email")
	password := stringField(postMap, "password")
	role := stringField(postMap, "role")

	if email == "" || password == "" || role == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Missing credentials"})
		return
	}

	client := aController.clientForRole(role)
	if client == nil {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": fmt.Sprintf("Supabase not configured for %s.", role),
		})
		return
	}

	session, err := client.SignInWithPassword(r.Context(), email, password)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": err.Error()})
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"user": models.AuthUser{
			ID:          session.User.ID,
			Email:       session.User.Email,
			Role:        role,
			AccessToken: session.AccessToken,
		},
	})
}

func (aController *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	setJSONHeaders(w)

	postMap, err := parseRequestBody(r, w)
	if err != nil {
		return
	}

	email := stringField(postMap, "email")
	password := stringField(postMap, "password")
	role := stringField(postMap, "role")

	if email == "" || password == "" || role == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Missing credentials"})
		return
	}

	client := aController.clientForRole(role)
	if client == nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": fmt.Sprintf("Supabase not configured for %s.", role),
		})
		return
	}

	_, err = client.SignUp(r.Context(), email, password, map[string]interface{}{"role": role})
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": err.Error()})
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "User created. Please check email for confirmation.",
	})
}

// BearerEmail returns the email claim of a valid bearer token, or "" when
// no usable token is present. Provider access tokens are HS256-signed with
// the project's JWT secret, so a valid signature outranks any
// client-supplied email in the request body.
func (aController *AuthController) BearerEmail(r *http.Request) string {
	if aController.JWTSecret == "" {
		return ""
	}

	tokenString := extractToken(r)
	if tokenString == "" {
		return ""
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(aController.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return ""
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}

	email, _ := claims["email"].(string)
	return email
}

func extractToken(r *http.Request) string {
	bearToken := r.Header.Get("Authorization")
	strArr := strings.Split(bearToken, " ")
	if len(strArr) == 2 {
		return strArr[1]
	}
	return ""
}
