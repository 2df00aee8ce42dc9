package assessment

import (
	"context"
	"fmt"

	"github.com/pathwise/pathwise-lms/internal/grading"
	"github.com/pathwise/pathwise-lms/internal/progress"
)

// Graded is the evaluator's verdict for one submission.
type Graded struct {
	Score        float64                             `json:"score"` // 0..100 over auto-gradable points
	Passed       bool                                `json:"passed"`
	Outcomes     map[string]progress.QuestionOutcome `json:"outcomes"`
	NeedsManual  bool                                `json:"needs_manual"` // any essay awaiting review
	EarnedPoints float64                             `json:"earned_points"`
	TotalPoints  float64                             `json:"total_points"` // auto-gradable denominator
}

// Evaluator scores a full submission against an assessment by routing each
// question through the per-kind grading strategies.
type Evaluator struct {
	grader grading.Grader
}

func NewEvaluator(g grading.Grader) *Evaluator {
	if g == nil {
		g = grading.NewDefaultGrader()
	}
	return &Evaluator{grader: g}
}

// Grade computes per-question correctness and the weighted total. Unanswered
// or malformed responses score zero for their question; essays are flagged
// for manual review and excluded from the denominator.
func (ev *Evaluator) Grade(ctx context.Context, a Assessment, responses map[string]interface{}) (Graded, error) {
	g := Graded{Outcomes: make(map[string]progress.QuestionOutcome, len(a.Questions))}

	for _, q := range a.Questions {
		if !q.AutoGradable() {
			g.NeedsManual = true
			g.Outcomes[q.ID] = progress.QuestionOutcome{MaxPoints: q.Points, NeedsManual: true}
			continue
		}
		g.TotalPoints += q.Points

		resp, answered := responses[q.ID]
		if !answered {
			g.Outcomes[q.ID] = progress.QuestionOutcome{MaxPoints: q.Points}
			continue
		}
		res, err := ev.grader.Grade(ctx, gradingView(q), resp)
		if err != nil {
			// malformed response shape: the question scores zero
			g.Outcomes[q.ID] = progress.QuestionOutcome{MaxPoints: q.Points}
			continue
		}
		g.Outcomes[q.ID] = progress.QuestionOutcome{
			Correct:   res.Correct,
			Points:    res.AutoPoints,
			MaxPoints: res.MaxPoints,
		}
		g.EarnedPoints += res.AutoPoints
	}

	if g.TotalPoints == 0 {
		return Graded{}, &NoGradableQuestionsError{AssessmentID: a.ID}
	}
	g.Score = 100 * g.EarnedPoints / g.TotalPoints
	g.Passed = g.Score >= a.PassingScore
	return g, nil
}

// gradingView flattens a typed payload into the grading package's view. The
// switch is exhaustive over the payload kinds.
func gradingView(q Question) grading.Q {
	out := grading.Q{Type: string(q.Type), Points: q.Points}
	switch p := q.Payload.(type) {
	case ChoicePayload:
		out.Options = p.Options
		out.Correct = p.Correct
	case TextPayload:
		out.Accepted = p.Accepted
	case MatchingPayload:
		out.Left = p.Left
		out.Right = p.Right
		out.Pairs = p.Pairs
	case OrderingPayload:
		out.Sequence = p.Items
	case EssayPayload:
		// never reaches the grader
	default:
		panic(fmt.Sprintf("unhandled payload %T", q.Payload))
	}
	return out
}
