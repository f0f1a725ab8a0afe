package otp

import (
	"strings"

	"github.com/nyaruka/phonenumbers"

	otpModel "storefront-auth/models/otp"
)

// Target is the normalized destination a code is bound to: a lower-cased
// email address or an E.164 phone number, plus the channel it resolves to.
type Target struct {
	Value   string
	Channel otpModel.Channel
}

// NormalizeTarget resolves a request's subject. Email takes precedence
// when both are present. Returns ErrInvalidRequest when neither is given
// or the phone number does not parse as a real number.
func NormalizeTarget(email, phone string) (Target, error) {
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)

	if email != "" {
		return Target{
			Value:   strings.ToLower(email),
			Channel: otpModel.ChannelEmail,
		}, nil
	}

	if phone == "" {
		return Target{}, ErrInvalidRequest
	}

	normalized, err := normalizePhone(phone)
	if err != nil {
		return Target{}, err
	}

	return Target{
		Value:   normalized,
		Channel: otpModel.ChannelPhone,
	}, nil
}

func normalizePhone(phone string) (string, error) {
	cleaned := strings.TrimSpace(phone)
	if !strings.HasPrefix(cleaned, "+") {
		cleaned = "+" + cleaned
	}

	num, err := phonenumbers.Parse(cleaned, "")
	if err != nil {
		return "", ErrInvalidRequest
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidRequest
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}
