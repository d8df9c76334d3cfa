package heartrisk

import (
	"errors"
	"fmt"
)

var (
	ErrShapeMismatch   = errors.New("shape mismatch")
	ErrUnexpectedLabel = errors.New("classifier returned a label outside {0,1}")
)

// ShapeMismatchError reports a vector whose width differs from what a fitted
// scaler or classifier expects.
type ShapeMismatchError struct {
	Stage string
	Want  int
	Got   int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: %s expects %d features, got %d", ErrShapeMismatch, e.Stage, e.Want, e.Got)
}

func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrShapeMismatch
}

// CheckWidth returns a *ShapeMismatchError when got != want.
func CheckWidth(stage string, want, got int) error {
	if want != got {
		return &ShapeMismatchError{Stage: stage, Want: want, Got: got}
	}
	return nil
}
