package statuspage

// Error wraps another error to include the appropriate HTTP status code to send
// as a result of this error.
type Error struct {
	Inner      error
	StatusCode int
	Message    string
}

func (err Error) Error() string {
	if err.Inner == nil {
		return err.Message
	}

	return err.Inner.Error()
}

// Unwrap returns the wrapped error.
func (err Error) Unwrap() error {
	return err.Inner
}
