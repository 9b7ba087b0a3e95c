package byterange

// NotSatisfiableError indicates that a range specifier can not be honoured
// for the content it was applied to. It is produced for specifiers with a
// missing or unknown unit, and for specifiers where every range was rejected.
type NotSatisfiableError struct {
	// Specifier is the original specifier text, kept for diagnostics.
	Specifier string
}

func (err *NotSatisfiableError) Error() string {
	if err.Specifier == "" {
		return "range not satisfiable"
	}

	return "range not satisfiable: " + err.Specifier
}
