package provider

import "fmt"

// ConfigurationError is returned when a required setting is absent
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Setting)
}

// FetchError is returned when the upstream feed is unreachable or answers
// with a non-2xx status. StatusCode is zero for transport failures.
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream request failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
