package serve

// DataResponse is returned by GET /api/data
type DataResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// GreetResponse is returned by POST /api/greet
type GreetResponse struct {
	Greeting string `json:"greeting"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
