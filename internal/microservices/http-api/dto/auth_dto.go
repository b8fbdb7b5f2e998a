package dto

// Data Transfer Objects for signup and token exchange

// SignupRequest: payload for user signup
type SignupRequest struct {
	Username string `json:"username" binding:"required,max=150,username"`
	Email    string `json:"email" binding:"required,email,max=254"`
}

// SignupResponse echoes the accepted signup
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest: payload for exchanging a confirmation code
type TokenRequest struct {
	Username         string `json:"username" binding:"required,max=150,username"`
	ConfirmationCode string `json:"confirmation_code" binding:"required,max=64"`
}

// TokenResponse: response payload after a successful exchange
type TokenResponse struct {
	Token string `json:"token"`
}
