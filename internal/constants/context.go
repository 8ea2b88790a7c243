package constants

// Gin context keys set by the access guard and read by handlers.
const (
	ContextUserIDKey = "user_id"
	ContextUserKey   = "user"
)
