package sales

import (
	"errors"
	"fmt"
)

var (
	ErrRowSkipped          = errors.New("row skipped")
	ErrArtifactUnavailable = errors.New("artifact unavailable")
	ErrEncodingFailure     = errors.New("encoding failure")
)

const (
	REASON_MALFORMED_ROW = "malformed row"
	REASON_UNKNOWN_TYPE  = "unknown type"
)

// RowSkippedError is returned by the parsers when a whole row has to be
// discarded. Processing of the stream continues after it.
type RowSkippedError struct {
	Line   string
	Reason string
}

func (e *RowSkippedError) Error() string {
	return fmt.Sprintf("%s: %q", e.Reason, e.Line)
}

func (e *RowSkippedError) Is(target error) bool {
	return target == ErrRowSkipped
}

// ArtifactError marks a single input (raw file or summary artifact) that could
// not be fetched or read to the end.
type ArtifactError struct {
	ID  string
	Err error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("artifact %s unavailable: %v", e.ID, e.Err)
}

func (e *ArtifactError) Unwrap() error {
	return e.Err
}

func (e *ArtifactError) Is(target error) bool {
	return target == ErrArtifactUnavailable
}

type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("failed to encode rollup: %v", e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

func (e *EncodingError) Is(target error) bool {
	return target == ErrEncodingFailure
}

// FieldWarning reports a numeric field that could not be coerced and was
// accepted as zero.
type FieldWarning struct {
	Field string
	Value string
}

func (w FieldWarning) String() string {
	return fmt.Sprintf("invalid %s %q, using 0", w.Field, w.Value)
}
