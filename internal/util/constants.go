package util

const DateFormat = "2006-01-02"

// Context keys set by middleware.
const (
	ContextUserID = "userID"
)
