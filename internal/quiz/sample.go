package quiz

import (
	"math/rand/v2"

	"github.com/pavelanni/quizzer/internal/model"
)

// DefaultSessionSize is the number of questions drawn for one session.
const DefaultSessionSize = 5

// Sample returns up to n questions drawn from pool without replacement, in
// random order. n <= 0 draws the whole pool. The pool itself is not modified.
// A nil rng uses the global source.
func Sample(pool []model.Question, n int, rng *rand.Rand) ([]model.Question, error) {
	if len(pool) == 0 {
		return nil, ErrNoQuestions
	}
	out := make([]model.Question, len(pool))
	copy(out, pool)

	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })

	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out, nil
}
