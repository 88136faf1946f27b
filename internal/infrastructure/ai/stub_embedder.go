package ai

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
)

// StubEmbedder produces deterministic unit-norm vectors derived from token
// hashes. It lets the full pipeline run without an embedding endpoint: equal
// texts map to equal vectors, and texts sharing words land near each other.
// Not a substitute for a real model.
type StubEmbedder struct {
	dim int
}

// NewStubEmbedder builds a stub of the given dimensionality.
func NewStubEmbedder(dim int) *StubEmbedder {
	if dim <= 0 {
		dim = 768
	}
	return &StubEmbedder{dim: dim}
}

func (s *StubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float64, s.dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		sum := sha256.Sum256([]byte(word))
		for i := 0; i+8 <= len(sum); i += 8 {
			idx := binary.BigEndian.Uint64(sum[i:i+8]) % uint64(s.dim)
			vec[idx]++
		}
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	out := make([]float32, s.dim)
	if norm == 0 {
		out[0] = 1
		return out, nil
	}
	norm = math.Sqrt(norm)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

func (s *StubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *StubEmbedder) Dimensions() int {
	return s.dim
}
