package makam

import (
	"errors"
	"fmt"
)

// ErrDegenerateRange is returned when a pitch track has no usable
// frequency range to quantize.
var ErrDegenerateRange = errors.New("degenerate pitch range")

// MissingInputError means an artifact could not be found in the store.
type MissingInputError struct {
	MBID     string
	Slug     string
	Artifact string
	Version  string
	Err      error
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing %s/%s (version %s) for %s: %v", e.Slug, e.Artifact, e.Version, e.MBID, e.Err)
}

func (e *MissingInputError) Unwrap() error { return e.Err }

// MalformedInputError means an artifact was found but did not decode.
type MalformedInputError struct {
	Path string
	// Key is the expected top-level key, empty when the document itself is broken.
	Key string
	Err error
}

func (e *MalformedInputError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("malformed %s: key %q: %v", e.Path, e.Key, e.Err)
	}
	return fmt.Sprintf("malformed %s: %v", e.Path, e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// DegenerateRangeError carries the range that could not be used.
type DegenerateRangeError struct {
	Max float64
	Min float64
	// Voiced is the number of frames with a positive frequency.
	Voiced int
}

func (e *DegenerateRangeError) Error() string {
	if e.Voiced == 0 {
		return fmt.Sprintf("%v: no voiced frames", ErrDegenerateRange)
	}
	return fmt.Sprintf("%v: max %g <= min %g", ErrDegenerateRange, e.Max, e.Min)
}

func (e *DegenerateRangeError) Unwrap() error { return ErrDegenerateRange }

// UpstreamAlgorithmError wraps a failure of an external algorithm.
type UpstreamAlgorithmError struct {
	Algorithm string
	Err       error
}

func (e *UpstreamAlgorithmError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Algorithm, e.Err)
}

func (e *UpstreamAlgorithmError) Unwrap() error { return e.Err }
