package handler

// errorResponse documents the envelope written by the API error handler.
type errorResponse struct {
	Error string `json:"error"`
}

type statusResponse struct {
	Status string `json:"status"`
}
