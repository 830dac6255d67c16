package dto

// Response is the uniform envelope every endpoint returns. Message is
// always safe to show an end user; failures never carry internals.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OK builds a success response.
func OK(message string, data any) Response {
	return Response{Success: true, Message: message, Data: data}
}

// Fail builds a failure response.
func Fail(message string) Response {
	return Response{Success: false, Message: message}
}
