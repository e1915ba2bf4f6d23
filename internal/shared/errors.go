package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session errors
	ErrNotAuthenticated        = fmt.Errorf("not authenticated")
	ErrInvalidCredentials      = fmt.Errorf("invalid credentials")
	ErrMalformedPersistedState = fmt.Errorf("malformed persisted session")
	ErrKeyNotFound             = fmt.Errorf("key not found")

	// Favourites errors
	ErrAuthRequired        = fmt.Errorf("login required")
	ErrMutationFailed      = fmt.Errorf("favourites update failed")
	ErrOperationInProgress = fmt.Errorf("operation already in progress")
	ErrResyncSuperseded    = fmt.Errorf("resync superseded")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrRequestFailed      = fmt.Errorf("request failed")
	ErrDecodeResponse     = fmt.Errorf("failed to decode response")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
