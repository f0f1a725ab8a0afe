package otp

import "storefront-auth/models/account"

// IssueRequest is the payload for requesting an OTP. Email wins when both
// email and phone are present.
type IssueRequest struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	FlowType string `json:"flowType" validate:"required,oneof=login signup recovery"`
}

// IssueResponse reports which channel was resolved and whether the
// out-of-band delivery went through. delivered=false is a soft failure;
// the code is still valid.
type IssueResponse struct {
	Success   bool   `json:"success"`
	Channel   string `json:"channel"`
	Delivered bool   `json:"delivered"`
	ExpiresAt string `json:"expires_at"`
}

// VerifyRequest is the payload for redeeming an OTP. Password is required
// for the signup flow only.
type VerifyRequest struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Code     string `json:"code" validate:"required,len=6"`
	FlowType string `json:"flowType" validate:"required,oneof=login signup recovery"`
	Password string `json:"password,omitempty"`
}

// VerifyResponse is returned on successful verification. ResetToken is
// only set for the recovery flow; AccountCreated only for signup.
type VerifyResponse struct {
	Success        bool          `json:"success"`
	Verified       bool          `json:"verified"`
	AccountCreated bool          `json:"accountCreated,omitempty"`
	Account        *account.View `json:"account,omitempty"`
	ResetToken     string        `json:"resetToken,omitempty"`
}
