package messaging

import (
	"storefront-auth/logger"
	otpModel "storefront-auth/models/otp"
)

// Sender delivers one message on one channel and reports whether it went
// out. Implementations must swallow transport errors into a false return.
type Sender interface {
	Send(target, subject, body string) bool
}

// Router implements the messaging collaborator by dispatching on channel:
// email goes to the mailer, phone to the SMS gateway.
type Router struct {
	Email Sender
	Phone Sender
}

func NewRouter(email, phone Sender) *Router {
	return &Router{Email: email, Phone: phone}
}

// Send routes the message. Unknown channels and missing senders count as
// delivery failures, not errors.
func (r *Router) Send(target string, channel otpModel.Channel, subject, body string) bool {
	switch channel {
	case otpModel.ChannelEmail:
		if r.Email == nil {
			logger.Warning("No email sender configured")
			return false
		}
		return r.Email.Send(target, subject, body)
	case otpModel.ChannelPhone:
		if r.Phone == nil {
			logger.Warning("No SMS sender configured")
			return false
		}
		return r.Phone.Send(target, subject, body)
	}

	logger.Warning("Unknown delivery channel: " + string(channel))
	return false
}
