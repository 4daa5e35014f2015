package utils

import "time"

// APIResponse is the envelope every shop endpoint returns. Data holds
// the command result (receipt, ticket, stock listing); Error carries
// the failure detail the front-end relays to the user.
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func ErrorResponse(message, error string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     error,
		Timestamp: time.Now(),
	}
}

// ErrorResponseWithData is an error envelope that still carries data,
// such as the channel of the open ticket a duplicate creation hit.
func ErrorResponseWithData(message, error string, data interface{}) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Data:      data,
		Error:     error,
		Timestamp: time.Now(),
	}
}
