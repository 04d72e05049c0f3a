// Package avatarerr defines the error kinds reported by the avatar pipeline.
//
// Every stage failure is an *Error carrying a kind (one of the sentinels below),
// the stage that failed and the underlying cause. errors.Is matches both the
// kind and the cause.
package avatarerr

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	// ErrInput: insufficient or malformed landmarks, zero-vertex mesh, bad enum values.
	ErrInput = errors.New("input error")
	// ErrEncode: container framing or self-check failure. Always a defect.
	ErrEncode = errors.New("encode error")
	// ErrResource: texture decode or embed failure. Recovered by the caller.
	ErrResource = errors.New("resource error")
	// ErrValidation: a container failed magic, version or length checks.
	ErrValidation = errors.New("validation error")
)

// Stage names used in error messages.
const (
	StageDecode   = "decode-input"
	StageMesh     = "mesh-builder"
	StageNormals  = "normal-estimator"
	StageDeform   = "expression-deformer"
	StageMaterial = "material-synthesizer"
	StageScene    = "scene-assembler"
	StageEncode   = "glb-encoder"
	StageValidate = "glb-validator"
)

// Error is a classified pipeline failure.
type Error struct {
	Kind  error
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Input wraps err as an ErrInput raised by stage.
func Input(stage string, err error) error {
	return &Error{Kind: ErrInput, Stage: stage, Err: err}
}

// Encode wraps err as an ErrEncode raised by stage.
func Encode(stage string, err error) error {
	return &Error{Kind: ErrEncode, Stage: stage, Err: err}
}

// Resource wraps err as an ErrResource raised by stage.
func Resource(stage string, err error) error {
	return &Error{Kind: ErrResource, Stage: stage, Err: err}
}

// Validation wraps err as an ErrValidation raised by stage.
func Validation(stage string, err error) error {
	return &Error{Kind: ErrValidation, Stage: stage, Err: err}
}

// StageOf returns the stage of the first *Error in err's chain, or "".
func StageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}
