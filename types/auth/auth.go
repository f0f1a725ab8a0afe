package auth

// ResetPasswordRequest completes a recovery flow. Token is the single-use
// capability returned by the recovery verification.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}
