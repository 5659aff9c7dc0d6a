package app

import (
	"math/rand/v2"

	"trivia-service/internal/domain"
)

// Randomizer builds the per-fetch play view of a game's questions.
type Randomizer struct {
	shuffle func(n int, swap func(i, j int))
}

// NewRandomizer uses the goroutine-safe global source.
func NewRandomizer() *Randomizer {
	return &Randomizer{shuffle: rand.Shuffle}
}

// NewSeededRandomizer is deterministic and not safe for concurrent use.
func NewSeededRandomizer(seed uint64) *Randomizer {
	rnd := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &Randomizer{shuffle: rnd.Shuffle}
}

// Randomize returns shuffled copies of questions, with each question's options
// shuffled and CorrectAnswer pointing at the same option content as before.
// The input slice and its option slices are not modified.
func (r *Randomizer) Randomize(questions []domain.Question) []domain.Question {
	out := make([]domain.Question, len(questions))
	copy(out, questions)
	r.shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })

	for i := range out {
		out[i] = r.shuffleOptions(out[i])
	}
	return out
}

func (r *Randomizer) shuffleOptions(q domain.Question) domain.Question {
	options := make([]domain.Option, len(q.Options))
	copy(options, q.Options)
	correct := q.CorrectAnswer

	r.shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
		switch correct {
		case i:
			correct = j
		case j:
			correct = i
		}
	})

	q.Options = options
	q.CorrectAnswer = correct
	return q
}
