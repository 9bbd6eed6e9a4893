package matching

import (
	"math"

	"github.com/oggyb/muzz-discovery/internal/db"
)

const (
	// EmbeddingSize is the fixed length of every feature vector.
	EmbeddingSize = 32

	maxAnswer = 5.0
	neutral   = 0.5
)

// BuildEmbedding turns a profile and its optional latest quiz into a
// fixed-length vector in [0,1]. Layout: the four cultural dimensions, then quiz
// answers in stored order, then neutral padding. Answers that do not fit are
// dropped.
func BuildEmbedding(p *db.Profile, quiz *db.QuizResponse) []float64 {
	vec := make([]float64, 0, EmbeddingSize)

	cv := p.CulturalValues
	vec = append(vec,
		norm(cv.Spirituality),
		norm(cv.Family),
		norm(cv.Tradition),
		norm(cv.Modernity),
	)

	if quiz != nil {
		for _, a := range quiz.Answers.Data() {
			if len(vec) == EmbeddingSize {
				break
			}
			vec = append(vec, norm(a.Value))
		}
	}

	for len(vec) < EmbeddingSize {
		vec = append(vec, neutral)
	}
	return vec
}

func norm(v int) float64 {
	return clamp01(float64(v) / maxAnswer)
}

// Cosine returns the cosine similarity of a and b, or 0 if either has zero
// magnitude. Vectors of different length are compared over the shorter one.
func Cosine(a, b []float64) float64 {
	n := min(len(a), len(b))
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
