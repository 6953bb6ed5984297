// Package errs contains common error constants shared across the analyzer.
package errs

import "errors"

// ErrFrontendUnavailable is returned when the C/C++ frontend library
// (the libclang-equivalent) cannot be loaded or initialized.
var ErrFrontendUnavailable = errors.New("frontend unavailable")

// ErrParseFailed is returned when the frontend throws while parsing the
// requested source. The runner recovers from this locally.
var ErrParseFailed = errors.New("parse failed")

// ErrNilDependency indicates improper initialization: a required
// collaborator was nil.
var ErrNilDependency = errors.New("nil dependency")

// ErrInvalidConfig indicates a configuration value outside its allowed set.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrInvalidFinding indicates a Finding was constructed with a severity or
// category outside the closed sets defined by the finding model.
var ErrInvalidFinding = errors.New("invalid finding")
