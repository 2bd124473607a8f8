package hi

import (
	"errors"
	"fmt"
)

// Stage identifies where a lookup failed.
type Stage string

const (
	StageFetch Stage = "fetch"
	StageParse Stage = "parse"
)

var (
	// ErrLookup matches every *LookupError via errors.Is.
	ErrLookup = errors.New("hi: lookup failed")
	// ErrNoResults is wrapped when the service reports success with an empty result list.
	ErrNoResults = errors.New("success response without results")

	errMalformedJSON    = errors.New("malformed JSON")
	errResponseTooLarge = fmt.Errorf("response body exceeds %d bytes", MaxResponseSize)
)

// LookupError is the single error kind returned by lookups. Err carries the
// underlying transport or parse failure.
type LookupError struct {
	Stage Stage
	URL   string
	Err   error
}

func (e *LookupError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("hi: %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("hi: %s %s: %v", e.Stage, e.URL, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

func (e *LookupError) Is(target error) bool { return target == ErrLookup }
