package face

import "errors"

var (
	ErrNoFace             = errors.New("no face detected in image")
	ErrDimensionMismatch  = errors.New("embedding dimension mismatch")
	ErrDecode             = errors.New("image could not be decoded")
	ErrServiceUnavailable = errors.New("face embedding service is temporarily unavailable")
	ErrTimeout            = errors.New("face embedding request timed out")
)
