package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"

	otpModel "storefront-auth/models/otp"
)

type stubSender struct {
	delivered bool
	calls     int
	lastTo    string
}

func (s *stubSender) Send(target, subject, body string) bool {
	s.calls++
	s.lastTo = target
	return s.delivered
}

func TestRouterDispatchesByChannel(t *testing.T) {
	email := &stubSender{delivered: true}
	phone := &stubSender{delivered: true}
	router := NewRouter(email, phone)

	assert.True(t, router.Send("a@b.com", otpModel.ChannelEmail, "s", "b"))
	assert.Equal(t, 1, email.calls)
	assert.Equal(t, 0, phone.calls)
	assert.Equal(t, "a@b.com", email.lastTo)

	assert.True(t, router.Send("+14155552671", otpModel.ChannelPhone, "s", "b"))
	assert.Equal(t, 1, phone.calls)
}

func TestRouterPropagatesDeliveryFailure(t *testing.T) {
	email := &stubSender{delivered: false}
	router := NewRouter(email, nil)

	assert.False(t, router.Send("a@b.com", otpModel.ChannelEmail, "s", "b"))
}

func TestRouterMissingSenderIsSoftFailure(t *testing.T) {
	router := NewRouter(nil, nil)

	assert.False(t, router.Send("a@b.com", otpModel.ChannelEmail, "s", "b"))
	assert.False(t, router.Send("+14155552671", otpModel.ChannelPhone, "s", "b"))
	assert.False(t, router.Send("x", otpModel.Channel("carrier-pigeon"), "s", "b"))
}
