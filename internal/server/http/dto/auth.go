package dto

// LoginRequest carries the administrator password.
type LoginRequest struct {
	Password string `json:"password"`
}

// TokenResponse returns the issued auth token.
type TokenResponse struct {
	Token string `json:"token"`
}
