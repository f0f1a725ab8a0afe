package types

import "time"

// LogEntry is the in-flight form of an audit row before the async logger
// persists it.
type LogEntry struct {
	ID              uint
	Method          string
	URL             string
	ActorUuid       string
	RequestBody     string
	ResponseBody    string
	RequestHeaders  string
	ResponseHeaders string
	StatusCode      int
	CreatedAt       time.Time
}
