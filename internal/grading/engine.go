package grading

import (
	"context"
	"errors"
)

// Q is the minimal flat view of a question needed for grading. The assessment
// package converts its typed payloads into this shape before dispatch.
type Q struct {
	Type   string
	Points float64

	Options []string // choice kinds: ordered option list
	Correct []int    // choice kinds: designated correct indices

	Accepted []string // text kinds: accepted answers

	Left  []string // matching: left items
	Right []string // matching: right items
	Pairs []int    // matching: Pairs[i] = right index paired with left i

	Sequence []string // ordering: items in the designated order
}

// Result is the outcome of grading a single question response.
type Result struct {
	Correct     bool
	AutoPoints  float64 // q.Points when correct, 0 otherwise
	MaxPoints   float64
	NeedsManual bool // true for essay responses
}

// Strategy grades a single question.
type Strategy interface {
	Grade(ctx context.Context, q Q, response interface{}) (Result, error)
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(ctx context.Context, q Q, response interface{}) (Result, error)
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(ctx context.Context, q Q, response interface{}) (Result, error) {
	s, ok := g.strategies[q.Type]
	if !ok {
		return Result{}, errors.New("no strategy for question type: " + q.Type)
	}
	return s.Grade(ctx, q, response)
}

// NewDefaultGrader installs the built-in strategies. Scoring is strictly
// all-or-nothing: a question is either fully correct or awards zero points.
func NewDefaultGrader() Grader {
	return &defaultGrader{
		strategies: map[string]Strategy{
			"multiple_choice": singleChoiceStrategy{},
			"true_false":      singleChoiceStrategy{},
			"multiple_select": multiSelectStrategy{},
			"fill_blank":      textMatchStrategy{},
			"short_answer":    textMatchStrategy{},
			"essay":           essayStrategy{},
			"matching":        matchingStrategy{},
			"ordering":        orderingStrategy{},
		},
	}
}

// --- Strategies ---

type singleChoiceStrategy struct{}

func (singleChoiceStrategy) Grade(_ context.Context, q Q, response interface{}) (Result, error) {
	res := Result{MaxPoints: q.Points}
	idx, ok := toInt(response)
	if !ok {
		return res, errors.New("response must be an option index")
	}
	if len(q.Correct) == 1 && idx == q.Correct[0] {
		res.Correct = true
		res.AutoPoints = q.Points
	}
	return res, nil
}

type multiSelectStrategy struct{}

func (multiSelectStrategy) Grade(_ context.Context, q Q, response interface{}) (Result, error) {
	res := Result{MaxPoints: q.Points}
	idxs, ok := toIntSlice(response)
	if !ok {
		return res, errors.New("response must be a list of option indices")
	}
	// exact set equality, no partial credit
	if setEqual(toSet(q.Correct), toSet(idxs)) {
		res.Correct = true
		res.AutoPoints = q.Points
	}
	return res, nil
}

type textMatchStrategy struct{}

func (textMatchStrategy) Grade(_ context.Context, q Q, response interface{}) (Result, error) {
	res := Result{MaxPoints: q.Points}
	s, ok := response.(string)
	if !ok {
		return res, errors.New("response must be string")
	}
	norm := normalize(s)
	for _, a := range q.Accepted {
		if normalize(a) == norm {
			res.Correct = true
			res.AutoPoints = q.Points
			return res, nil
		}
	}
	return res, nil
}

type essayStrategy struct{}

func (essayStrategy) Grade(_ context.Context, q Q, _ interface{}) (Result, error) {
	return Result{MaxPoints: q.Points, NeedsManual: true}, nil
}

type matchingStrategy struct{}

func (matchingStrategy) Grade(_ context.Context, q Q, response interface{}) (Result, error) {
	res := Result{MaxPoints: q.Points}
	pairs, ok := toIntMap(response)
	if !ok {
		return res, errors.New("response must map left index to right index")
	}
	if len(pairs) != len(q.Pairs) {
		return res, nil
	}
	for left, right := range pairs {
		if left < 0 || left >= len(q.Pairs) || q.Pairs[left] != right {
			return res, nil
		}
	}
	res.Correct = true
	res.AutoPoints = q.Points
	return res, nil
}

type orderingStrategy struct{}

func (orderingStrategy) Grade(_ context.Context, q Q, response interface{}) (Result, error) {
	res := Result{MaxPoints: q.Points}
	seq, ok := toStringSlice(response)
	if !ok {
		return res, errors.New("response must be a list of items")
	}
	if len(seq) != len(q.Sequence) {
		return res, nil
	}
	for i, item := range seq {
		if item != q.Sequence[i] {
			return res, nil
		}
	}
	res.Correct = true
	res.AutoPoints = q.Points
	return res, nil
}

// --- response coercion helpers (JSON decoding yields float64 / []interface{}) ---

func toInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		return int(t), true
	default:
		return 0, false
	}
}

func toIntSlice(v interface{}) ([]int, bool) {
	switch t := v.(type) {
	case []int:
		return t, true
	case []interface{}:
		out := make([]int, 0, len(t))
		for _, e := range t {
			n, ok := toInt(e)
			if !ok {
				return nil, false
			}
			out = append(out, n)
		}
		return out, true
	default:
		return nil, false
	}
}

func toStringSlice(v interface{}) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func toIntMap(v interface{}) (map[int]int, bool) {
	switch t := v.(type) {
	case map[int]int:
		return t, true
	case map[string]interface{}:
		out := make(map[int]int, len(t))
		for k, e := range t {
			ki, ok := atoiStrict(k)
			if !ok {
				return nil, false
			}
			vi, ok := toInt(e)
			if !ok {
				return nil, false
			}
			out[ki] = vi
		}
		return out, true
	default:
		return nil, false
	}
}

func atoiStrict(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

func toSet(arr []int) map[int]struct{} {
	m := make(map[int]struct{}, len(arr))
	for _, n := range arr {
		m[n] = struct{}{}
	}
	return m
}

func setEqual(a, b map[int]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
