package common

type contextKey string

const (
	RequestIdKey contextKey = "request_id"
	UserIdKey    contextKey = "user_id"
)
