package constants

// Account roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Session cookie and context keys
const (
	SessionCookieName = "session"
	LocalsAccountUUID = "account_uuid"
	LocalsIsAdmin     = "is_admin"
)
