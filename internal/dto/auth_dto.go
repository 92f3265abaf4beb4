package dto

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is sent form-encoded (OAuth2 password form convention), so
// the field names are form names, not JSON.
type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ErrorResponse covers the error bodies the backend sends: FastAPI style
// {"detail": "..."} or {"detail": [{"msg": "..."}]}, and {"message": "..."}.
type ErrorResponse struct {
	Detail  interface{} `json:"detail,omitempty"`
	Message string      `json:"message,omitempty"`
}
