package scheduler

import "fmt"

// HTTPError represents a response that arrived but did not count as a
// success, with status details for reporting.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}
