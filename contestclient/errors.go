package contestclient

import (
	"fmt"
	"net"

	"github.com/pkg/errors"
)

const (
	OUTCOME_SUCCESS             = "success"
	OUTCOME_VALIDATION_ERROR    = "validation_error"
	OUTCOME_CONFIGURATION_ERROR = "configuration_error"
	OUTCOME_API_ERROR           = "api_error"
	OUTCOME_NETWORK_ERROR       = "network_error"
)

// ValidationError means user input was rejected before any request was made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Field)
}

// ConfigurationError means the endpoint for a phase is missing or unusable.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Key, e.Reason)
}

// ApiError carries a non-2xx reply from the verifier verbatim. Bodies over
// MAX_RESPONSE_BYTES are cut and end with TRUNCATED_MARKER.
type ApiError struct {
	StatusCode int
	Body       string
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Body)
}

// NetworkError wraps a transport failure: timeout, DNS, refused connection.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s", e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

func (e *NetworkError) Timeout() bool {
	var netErr net.Error
	return errors.As(e.Cause, &netErr) && netErr.Timeout()
}

// Outcome classifies err into one of the OUTCOME_* labels.
func Outcome(err error) string {

	var (
		validationErr    *ValidationError
		configurationErr *ConfigurationError
		apiErr           *ApiError
		networkErr       *NetworkError
	)

	switch {
	case err == nil:
		return OUTCOME_SUCCESS
	case errors.As(err, &validationErr):
		return OUTCOME_VALIDATION_ERROR
	case errors.As(err, &configurationErr):
		return OUTCOME_CONFIGURATION_ERROR
	case errors.As(err, &apiErr):
		return OUTCOME_API_ERROR
	case errors.As(err, &networkErr):
		return OUTCOME_NETWORK_ERROR
	}

	// Anything unclassified happened on the way to the wire
	return OUTCOME_NETWORK_ERROR
}
