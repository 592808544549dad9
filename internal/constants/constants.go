package constants

// Context keys set by the auth middleware.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyRole      = "role"
	ContextKeyRequestID = "request_id"
)

const HeaderRequestID = "X-Request-ID"

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Validation limits
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt input limit, in bytes
	MinPriority       = 1
	MaxPriority       = 5
	DefaultPriority   = 3
	DefaultColor      = "#64748b"
)
