package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const HashModelName = "hash-bigram"

// HashEmbedder maps text to a fixed-size vector by hashing character unigrams
// and bigrams into signed buckets. It needs no network and is deterministic,
// so identical texts always embed identically.
type HashEmbedder struct {
	dimension int
}

func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &HashEmbedder{dimension: dimension}
}

func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vector := make([]float32, e.dimension)
	runes := tokens(text)
	for i, r := range runes {
		e.add(vector, string(r), 1)
		if i+1 < len(runes) {
			e.add(vector, string(runes[i:i+2]), 0.5)
		}
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= scale
		}
	}
	return vector, nil
}

func (e *HashEmbedder) add(vector []float32, token string, weight float32) {
	h := fnv.New64a()
	h.Write([]byte(token))
	sum := h.Sum64()
	idx := int(sum % uint64(e.dimension))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vector[idx] += weight
}

func (e *HashEmbedder) ModelName() string {
	return HashModelName
}

func (e *HashEmbedder) Dimension() int {
	return e.dimension
}

// tokens lowercases text and drops whitespace and punctuation.
func tokens(text string) []rune {
	out := make([]rune, 0, len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}
