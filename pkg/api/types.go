package api

import (
	"time"
)

// ErrorResponse is the body of every failed proxy request.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Upstream  bool      `json:"upstream_credentials"`
}
