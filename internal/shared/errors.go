package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed = fmt.Errorf("authentication failed")

	// Dataset errors
	ErrDatasetUnavailable = fmt.Errorf("dataset unavailable")

	// API and alignment errors
	ErrRemoteRequest = fmt.Errorf("remote request failed")
	ErrAlignment     = fmt.Errorf("detail response misaligned with request batch")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
