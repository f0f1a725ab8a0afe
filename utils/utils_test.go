package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeBodyRedactsCredentialFields(t *testing.T) {
	body := []byte(`{"email":"a@b.com","password":"hunter22","code":"123456"}`)

	out := sanitizeBody(body)
	assert.Contains(t, out, `"email":"a@b.com"`)
	assert.Contains(t, out, `"password":"[REDACTED]"`)
	assert.Contains(t, out, `"code":"[REDACTED]"`)
	assert.NotContains(t, out, "hunter22")
	assert.NotContains(t, out, "123456")
}

func TestSanitizeBodyNonJSON(t *testing.T) {
	assert.Equal(t, "[non-json body omitted]", sanitizeBody([]byte("password=hunter22")))
}

func TestSanitizeBodyEmpty(t *testing.T) {
	assert.Equal(t, "", sanitizeBody(nil))
}
