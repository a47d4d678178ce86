package pipeline

import "errors"

// Sentinel errors returned by the stages. They are always wrapped; test with
// errors.Is.
var (
	// ErrSchema means the input lacks a required column. Nothing from the
	// failed split is kept.
	ErrSchema = errors.New("input schema error")

	// ErrEmptyInput means a stage found nothing to work on. It is reported
	// as a warning and no artifact is produced.
	ErrEmptyInput = errors.New("no input to process")

	// ErrSerialization means an artifact could not be encoded. Artifacts
	// from earlier stages are kept.
	ErrSerialization = errors.New("serialization error")
)
