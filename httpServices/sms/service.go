package httpServices

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"storefront-auth/logger"
)

// SMSClient posts messages to the SMS gateway's send endpoint.
type SMSClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewSMSClient(baseURL, apiKey string) *SMSClient {
	return &SMSClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type sendSMSRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// Send delivers one SMS. The subject is unused on this channel. Transport
// and gateway failures are logged and reported as false, never as errors.
func (c *SMSClient) Send(target, subject, body string) bool {
	if c.baseURL == "" {
		logger.Warning("SMS gateway URL not configured, skipping delivery")
		return false
	}

	payload, err := json.Marshal(sendSMSRequest{To: target, Message: body})
	if err != nil {
		logger.Error("Failed to marshal SMS payload", err)
		return false
	}

	httpReq, err := http.NewRequest("POST", c.baseURL+"/v1/messages", bytes.NewBuffer(payload))
	if err != nil {
		logger.Error("Failed to build SMS request", err)
		return false
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Error("SMS gateway request failed", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		logger.Warning("SMS gateway returned non-OK status: " + resp.Status)
		return false
	}

	return true
}
