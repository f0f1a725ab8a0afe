package types

// ApiResponse is the generic success envelope.
type ApiResponse struct {
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse carries a stable machine-readable ErrorCode next to the
// human-readable message; clients branch on the code, never the message.
type ErrorResponse struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode,omitempty"`
	Status    int    `json:"status"`
}
