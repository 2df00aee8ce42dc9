package assessment

import (
	"hash/fnv"
	"math/rand"
)

// Redacted returns a student-safe copy: answer keys stripped from every
// payload, ordering items shuffled so the stored order does not leak, and
// question order permuted when ShuffleQuestions is set. The shuffle is
// deterministic per (assessment, seed) so a learner sees a stable order for
// the whole attempt.
func (a Assessment) Redacted(seed string) Assessment {
	out := a
	out.Questions = make([]Question, len(a.Questions))
	for i, q := range a.Questions {
		out.Questions[i] = redactQuestion(q, a.ID+"|"+seed)
	}
	if a.ShuffleQuestions {
		rng := seededRand(a.ID + "|" + seed)
		rng.Shuffle(len(out.Questions), func(i, j int) {
			out.Questions[i], out.Questions[j] = out.Questions[j], out.Questions[i]
		})
	}
	return out
}

func redactQuestion(q Question, seed string) Question {
	switch p := q.Payload.(type) {
	case ChoicePayload:
		q.Payload = ChoicePayload{Options: p.Options}
	case TextPayload:
		q.Payload = TextPayload{}
	case MatchingPayload:
		q.Payload = MatchingPayload{Left: p.Left, Right: p.Right}
	case OrderingPayload:
		items := make([]string, len(p.Items))
		copy(items, p.Items)
		rng := seededRand(seed + "|" + q.ID)
		rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
		q.Payload = OrderingPayload{Items: items}
	case EssayPayload:
		q.Payload = EssayPayload{}
	}
	q.Explanation = ""
	return q
}

func seededRand(seed string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}
