package utils

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront-auth/middleware"
	"storefront-auth/types"
)

// Fields that must never land in the audit log.
var redactedFields = []string{"password", "code", "token", "resetToken"}

// CreateSanitizedLogEntry captures a deep-copied, redacted audit entry for
// the current request/response pair.
func CreateSanitizedLogEntry(c *fiber.Ctx) types.LogEntry {
	method := string([]byte(c.Method()))
	url := string([]byte(c.OriginalURL()))
	requestBody := sanitizeBody(c.Body())
	responseBody := sanitizeBody(c.Response().Body())

	requestHeaders := make([]byte, len(c.Request().Header.Header()))
	copy(requestHeaders, c.Request().Header.Header())

	responseHeaders := make([]byte, len(c.Response().Header.Header()))
	copy(responseHeaders, c.Response().Header.Header())

	return types.LogEntry{
		Method:          method,
		URL:             url,
		ActorUuid:       middleware.AccountUUID(c),
		RequestBody:     requestBody,
		ResponseBody:    responseBody,
		RequestHeaders:  string(requestHeaders),
		ResponseHeaders: string(responseHeaders),
		StatusCode:      c.Response().StatusCode(),
		CreatedAt:       time.Now(),
	}
}

// sanitizeBody blanks credential and code fields out of a JSON body.
// Non-JSON bodies are dropped rather than risked.
func sanitizeBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "[non-json body omitted]"
	}

	for _, field := range redactedFields {
		if _, ok := parsed[field]; ok {
			parsed[field] = "[REDACTED]"
		}
	}

	sanitized, err := json.Marshal(parsed)
	if err != nil {
		return "[body omitted]"
	}
	return string(sanitized)
}
