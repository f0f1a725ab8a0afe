package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	otpModel "storefront-auth/models/otp"
)

func TestNormalizeTargetEmailPrecedence(t *testing.T) {
	// Email wins even when a phone is also present.
	target, err := NormalizeTarget("a@b.com", "555")
	require.NoError(t, err)
	assert.Equal(t, otpModel.ChannelEmail, target.Channel)
	assert.Equal(t, "a@b.com", target.Value)
}

func TestNormalizeTargetCaseFoldsEmail(t *testing.T) {
	target, err := NormalizeTarget("  Customer@Shop.COM ", "")
	require.NoError(t, err)
	assert.Equal(t, "customer@shop.com", target.Value)
}

func TestNormalizeTargetPhoneToE164(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+14155552671", "+14155552671"},
		{"14155552671", "+14155552671"},
		{" +44 20 7946 0958 ", "+442079460958"},
	}

	for _, tc := range cases {
		target, err := NormalizeTarget("", tc.in)
		require.NoError(t, err, "phone %q", tc.in)
		assert.Equal(t, otpModel.ChannelPhone, target.Channel)
		assert.Equal(t, tc.want, target.Value)
	}
}

func TestNormalizeTargetRejectsMissingTarget(t *testing.T) {
	_, err := NormalizeTarget("", "")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = NormalizeTarget("   ", "  ")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestNormalizeTargetRejectsBadPhone(t *testing.T) {
	for _, phone := range []string{"555", "not-a-number", "+1"} {
		_, err := NormalizeTarget("", phone)
		assert.ErrorIs(t, err, ErrInvalidRequest, "phone %q", phone)
	}
}
