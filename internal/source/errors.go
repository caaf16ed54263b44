package source

import "fmt"

// SourceError wraps per-source failures so the controller can record
// them for post-session learning
type SourceError struct {
	Source string
	Reason string
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %s", e.Source, e.Reason)
}

func errUnknownSource(name string) error {
	return &SourceError{Source: name, Reason: "no registered provider"}
}

func errUnavailable(name string) error {
	return &SourceError{Source: name, Reason: "unavailable"}
}
