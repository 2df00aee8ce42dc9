package assessment

import (
	"encoding/json"
	"fmt"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	MultipleSelect QuestionType = "multiple_select"
	TrueFalse      QuestionType = "true_false"
	FillBlank      QuestionType = "fill_blank"
	ShortAnswer    QuestionType = "short_answer"
	Essay          QuestionType = "essay"
	Matching       QuestionType = "matching"
	Ordering       QuestionType = "ordering"
)

// Payload carries the type-specific fields of a question. Exactly one
// concrete payload exists per question kind; JSON encoding dispatches on the
// question's type tag.
type Payload interface {
	isPayload()
}

// ChoicePayload backs multiple_choice, multiple_select, and true_false.
// Correct holds the designated option indices: exactly one for single-choice
// kinds, one or more for multiple_select.
type ChoicePayload struct {
	Options []string `json:"options"`
	Correct []int    `json:"correct,omitempty"`
}

// TextPayload backs fill_blank and short_answer.
type TextPayload struct {
	Accepted []string `json:"accepted,omitempty"`
}

// MatchingPayload pairs left items to right items: Pairs[i] is the right
// index matched with left item i.
type MatchingPayload struct {
	Left  []string `json:"left"`
	Right []string `json:"right"`
	Pairs []int    `json:"pairs,omitempty"`
}

// OrderingPayload stores the items in the designated correct order; a
// submission is the same items in the learner's order.
type OrderingPayload struct {
	Items []string `json:"items"`
}

// EssayPayload has no gradable fields beyond an optional rubric shown to the
// reviewer.
type EssayPayload struct {
	Rubric string `json:"rubric,omitempty"`
}

func (ChoicePayload) isPayload()   {}
func (TextPayload) isPayload()     {}
func (MatchingPayload) isPayload() {}
func (OrderingPayload) isPayload() {}
func (EssayPayload) isPayload()    {}

type Question struct {
	ID          string       `json:"id"`
	Type        QuestionType `json:"type"`
	Prompt      string       `json:"prompt"`
	Points      float64      `json:"points"`
	Explanation string       `json:"explanation,omitempty"`
	Payload     Payload      `json:"payload"`
}

// AutoGradable reports whether the question contributes to the automatic
// score. Essays never do.
func (q Question) AutoGradable() bool { return q.Type != Essay }

type questionJSON struct {
	ID          string          `json:"id"`
	Type        QuestionType    `json:"type"`
	Prompt      string          `json:"prompt"`
	Points      float64         `json:"points"`
	Explanation string          `json:"explanation,omitempty"`
	Payload     json.RawMessage `json:"payload"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(q.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(questionJSON{
		ID:          q.ID,
		Type:        q.Type,
		Prompt:      q.Prompt,
		Points:      q.Points,
		Explanation: q.Explanation,
		Payload:     raw,
	})
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var aux questionJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	q.ID = aux.ID
	q.Type = aux.Type
	q.Prompt = aux.Prompt
	q.Points = aux.Points
	q.Explanation = aux.Explanation

	if len(aux.Payload) == 0 {
		aux.Payload = []byte("{}")
	}
	switch aux.Type {
	case MultipleChoice, MultipleSelect, TrueFalse:
		var p ChoicePayload
		if err := json.Unmarshal(aux.Payload, &p); err != nil {
			return err
		}
		q.Payload = p
	case FillBlank, ShortAnswer:
		var p TextPayload
		if err := json.Unmarshal(aux.Payload, &p); err != nil {
			return err
		}
		q.Payload = p
	case Matching:
		var p MatchingPayload
		if err := json.Unmarshal(aux.Payload, &p); err != nil {
			return err
		}
		q.Payload = p
	case Ordering:
		var p OrderingPayload
		if err := json.Unmarshal(aux.Payload, &p); err != nil {
			return err
		}
		q.Payload = p
	case Essay:
		var p EssayPayload
		if err := json.Unmarshal(aux.Payload, &p); err != nil {
			return err
		}
		q.Payload = p
	default:
		return fmt.Errorf("unknown question type: %q", aux.Type)
	}
	return nil
}

// Assessment is a graded, ordered set of questions plus pass/fail policy.
type Assessment struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	PassingScore     float64    `json:"passing_score"` // 0..100
	MaxAttempts      int        `json:"max_attempts"`  // >= 1
	TimeLimitMin     int        `json:"time_limit_min,omitempty"`
	ShuffleQuestions bool       `json:"shuffle_questions,omitempty"`
	RequireAll       bool       `json:"require_all_questions,omitempty"`
	Questions        []Question `json:"questions"`
	CreatedAt        int64      `json:"created_at,omitempty"`
}

// Validate checks policy ranges and per-kind payload shape.
func (a Assessment) Validate() error {
	if a.PassingScore < 0 || a.PassingScore > 100 {
		return fmt.Errorf("passing score out of range: %v", a.PassingScore)
	}
	if a.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be >= 1, got %d", a.MaxAttempts)
	}
	if a.TimeLimitMin < 0 {
		return fmt.Errorf("negative time limit: %d", a.TimeLimitMin)
	}
	seen := map[string]bool{}
	for _, q := range a.Questions {
		if q.ID == "" {
			return fmt.Errorf("question without id in assessment %s", a.ID)
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %s", q.ID)
		}
		seen[q.ID] = true
		if q.Points <= 0 {
			return fmt.Errorf("question %s: points must be > 0", q.ID)
		}
		if err := validatePayload(q); err != nil {
			return fmt.Errorf("question %s: %w", q.ID, err)
		}
	}
	return nil
}

func validatePayload(q Question) error {
	ok := false
	switch q.Type {
	case MultipleChoice, MultipleSelect, TrueFalse:
		_, ok = q.Payload.(ChoicePayload)
	case FillBlank, ShortAnswer:
		_, ok = q.Payload.(TextPayload)
	case Matching:
		_, ok = q.Payload.(MatchingPayload)
	case Ordering:
		_, ok = q.Payload.(OrderingPayload)
	case Essay:
		_, ok = q.Payload.(EssayPayload)
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	if !ok {
		return fmt.Errorf("payload does not match question type %s", q.Type)
	}

	switch p := q.Payload.(type) {
	case ChoicePayload:
		if len(p.Options) < 2 {
			return fmt.Errorf("need at least 2 options")
		}
		if q.Type == TrueFalse && len(p.Options) != 2 {
			return fmt.Errorf("true/false needs exactly 2 options")
		}
		if q.Type != MultipleSelect && len(p.Correct) != 1 {
			return fmt.Errorf("exactly one correct option required")
		}
		if len(p.Correct) == 0 {
			return fmt.Errorf("no correct options designated")
		}
		for _, c := range p.Correct {
			if c < 0 || c >= len(p.Options) {
				return fmt.Errorf("correct index %d out of range", c)
			}
		}
	case TextPayload:
		if len(p.Accepted) == 0 {
			return fmt.Errorf("no accepted answers")
		}
	case MatchingPayload:
		if len(p.Left) == 0 || len(p.Pairs) != len(p.Left) {
			return fmt.Errorf("pairing must cover every left item")
		}
		for _, r := range p.Pairs {
			if r < 0 || r >= len(p.Right) {
				return fmt.Errorf("right index %d out of range", r)
			}
		}
	case OrderingPayload:
		if len(p.Items) < 2 {
			return fmt.Errorf("need at least 2 items to order")
		}
	}
	return nil
}
