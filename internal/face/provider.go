package face

import (
	"context"
	"errors"
	"fmt"
)

// Status is the outcome of extracting a face from one image
type Status int

const (
	StatusFace Status = iota
	StatusNoFace
	StatusDecodeError
)

func (s Status) String() string {
	switch s {
	case StatusFace:
		return "face"
	case StatusNoFace:
		return "no_face"
	case StatusDecodeError:
		return "decode_error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Extraction is the result of Provider.Extract. Vector is set only for
// StatusFace and Reason only for StatusDecodeError.
type Extraction struct {
	Status Status
	Vector Vector
	Reason string
}

// Embedder turns image bytes into a face embedding. It returns ErrNoFace
// when the image contains no face.
type Embedder interface {
	Embed(ctx context.Context, imageData []byte) ([]float32, error)
}

// Provider validates images and obtains their face embeddings
type Provider struct {
	embedder Embedder
	dim      int
}

func NewProvider(embedder Embedder, dim int) *Provider {
	return &Provider{
		embedder: embedder,
		dim:      dim,
	}
}

// Dim returns the embedding dimensionality every Vector from this provider has
func (p *Provider) Dim() int {
	return p.dim
}

// Extract returns the face embedding of imageData. Images that cannot be
// decoded or contain no face are reported through Extraction.Status; the
// error is reserved for embedding service failures, cancellation and
// model output of the wrong dimension.
func (p *Provider) Extract(ctx context.Context, imageData []byte) (Extraction, error) {
	if err := ctx.Err(); err != nil {
		return Extraction{}, err
	}

	if _, err := Inspect(imageData); err != nil {
		return Extraction{Status: StatusDecodeError, Reason: err.Error()}, nil
	}

	embedding, err := p.embedder.Embed(ctx, imageData)
	if errors.Is(err, ErrNoFace) {
		return Extraction{Status: StatusNoFace}, nil
	}
	if errors.Is(err, ErrDecode) {
		return Extraction{Status: StatusDecodeError, Reason: err.Error()}, nil
	}
	if err != nil {
		return Extraction{}, err
	}

	if len(embedding) != p.dim {
		return Extraction{}, fmt.Errorf("%w: model returned %d values, expected %d", ErrDimensionMismatch, len(embedding), p.dim)
	}

	return Extraction{Status: StatusFace, Vector: Vector(embedding)}, nil
}
