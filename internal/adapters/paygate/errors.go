package paygate

import "fmt"

// GatewayError carries the HTTP status and raw body of a failed gateway call
type GatewayError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s failed: status=%d body=%s", e.Operation, e.StatusCode, e.Body)
}

// IsRetryable reports whether the failure is worth retrying
func (e *GatewayError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
