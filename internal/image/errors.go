package image

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedSource is returned when a value is not a recognised
	// image source.
	ErrUnsupportedSource = errors.New("unsupported image source")

	// ErrSourceNotReady is returned when an in-memory image has no pixel
	// data yet, such as a nil image or one with zero dimensions.
	ErrSourceNotReady = errors.New("image source is not ready")
)

// CrossOriginError is returned when the pixels behind a URL may not be read
// under the active URL policy.
type CrossOriginError struct {
	URL string
	Err error
}

func (e *CrossOriginError) Error() string {
	return fmt.Sprintf("cannot read pixels from %s: %v (use an https URL on a public host, or allow insecure sources)", e.URL, e.Err)
}

func (e *CrossOriginError) Unwrap() error {
	return e.Err
}

// AcquisitionError is returned when a source cannot be read or decoded.
type AcquisitionError struct {
	Source string
	Err    error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("failed to acquire image %s: %v", e.Source, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}
