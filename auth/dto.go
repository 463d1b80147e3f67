package auth

// RegisterRequest carries the fields needed to create an account.
type RegisterRequest struct {
	Username string `json:"username" example:"newuser"`
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"strongpassword123"`
}

// LoginRequest carries login credentials. Remember extends the session
// lifetime; Next is an optional post-login destination which is validated
// server-side before being echoed back.
type LoginRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"strongpassword123"`
	Remember bool   `json:"remember,omitempty"`
	Next     string `json:"next,omitempty" example:"/account"`
}

// SessionResponse is returned on successful login. The same token is also
// set as an HttpOnly cookie; API clients may instead send it as a bearer
// header.
type SessionResponse struct {
	Token      string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType  string `json:"token_type" example:"Bearer"`
	ExpiresIn  int64  `json:"expires_in" example:"86400"` // seconds until expiry
	RedirectTo string `json:"redirect_to" example:"/"`
}

// ResetRequestRequest asks for a password-reset email.
type ResetRequestRequest struct {
	Email string `json:"email" example:"user@example.com"`
}

// ResetSubmitRequest carries the new password for a reset token presented in
// the URL path.
type ResetSubmitRequest struct {
	Password string `json:"password" example:"newstrongpassword123"`
}
