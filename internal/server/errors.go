package server

import "errors"

// Server-specific errors
var (
	ErrServerClosed      = errors.New("server is closed")
	ErrMaxClientsReached = errors.New("maximum clients reached")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidConfig     = errors.New("invalid server configuration")
)
