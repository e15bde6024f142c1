package models

// AuthUser is the login payload returned to the frontend after the auth
// provider accepts the credentials.
type AuthUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	AccessToken string `json:"access_token"`
}
