package dto

// ChatRequest is the body of POST /chat. Message is a pointer so a missing
// field can be told apart from an empty string.
type ChatRequest struct {
	Message *string `json:"message"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
