package assessment

import (
	"reflect"
	"testing"
)

func redactFixture() Assessment {
	return Assessment{
		ID: "as1", PassingScore: 70, MaxAttempts: 2,
		Questions: []Question{
			{ID: "q1", Type: MultipleChoice, Points: 1, Explanation: "because",
				Payload: ChoicePayload{Options: []string{"a", "b"}, Correct: []int{0}}},
			{ID: "q2", Type: ShortAnswer, Points: 1,
				Payload: TextPayload{Accepted: []string{"secret"}}},
			{ID: "q3", Type: Matching, Points: 1,
				Payload: MatchingPayload{Left: []string{"l1", "l2"}, Right: []string{"r1", "r2"}, Pairs: []int{0, 1}}},
			{ID: "q4", Type: Ordering, Points: 1,
				Payload: OrderingPayload{Items: []string{"first", "second", "third", "fourth"}}},
			{ID: "q5", Type: Essay, Points: 5,
				Payload: EssayPayload{Rubric: "grader eyes only"}},
		},
	}
}

func TestRedactedStripsAnswerKeys(t *testing.T) {
	a := redactFixture()
	r := a.Redacted("attempt-1")

	byID := map[string]Question{}
	for _, q := range r.Questions {
		byID[q.ID] = q
	}

	if p := byID["q1"].Payload.(ChoicePayload); len(p.Correct) != 0 {
		t.Fatalf("choice keys leaked: %+v", p)
	}
	if byID["q1"].Explanation != "" {
		t.Fatal("explanation leaked")
	}
	if p := byID["q2"].Payload.(TextPayload); len(p.Accepted) != 0 {
		t.Fatalf("accepted answers leaked: %+v", p)
	}
	if p := byID["q3"].Payload.(MatchingPayload); len(p.Pairs) != 0 {
		t.Fatalf("pairs leaked: %+v", p)
	}
	if p := byID["q3"].Payload.(MatchingPayload); len(p.Left) != 2 || len(p.Right) != 2 {
		t.Fatalf("matching items missing: %+v", p)
	}
	if p := byID["q5"].Payload.(EssayPayload); p.Rubric != "" {
		t.Fatalf("rubric leaked: %+v", p)
	}

	// original untouched
	if p := a.Questions[0].Payload.(ChoicePayload); len(p.Correct) != 1 {
		t.Fatal("redaction mutated the source assessment")
	}
}

func TestRedactedShuffleIsDeterministicPerSeed(t *testing.T) {
	a := redactFixture()
	a.ShuffleQuestions = true

	first := a.Redacted("attempt-1")
	again := a.Redacted("attempt-1")
	if !reflect.DeepEqual(questionIDs(first), questionIDs(again)) {
		t.Fatalf("same seed produced different orders: %v vs %v",
			questionIDs(first), questionIDs(again))
	}

	// ordering items stay a permutation of the originals
	var items []string
	for _, q := range first.Questions {
		if q.ID == "q4" {
			items = q.Payload.(OrderingPayload).Items
		}
	}
	if len(items) != 4 {
		t.Fatalf("ordering items = %v", items)
	}
	seen := map[string]bool{}
	for _, it := range items {
		seen[it] = true
	}
	for _, want := range []string{"first", "second", "third", "fourth"} {
		if !seen[want] {
			t.Fatalf("item %q lost in shuffle: %v", want, items)
		}
	}
}

func questionIDs(a Assessment) []string {
	out := make([]string, len(a.Questions))
	for i, q := range a.Questions {
		out[i] = q.ID
	}
	return out
}
