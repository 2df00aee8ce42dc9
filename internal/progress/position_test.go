package progress

import (
	"errors"
	"testing"

	"github.com/pathwise/pathwise-lms/internal/content"
)

// twoModuleTree: m1 has lessons l1,l2; m2 has l3.
func twoModuleTree(t *testing.T) *content.Tree {
	t.Helper()
	tree, err := content.BuildTree(
		content.Course{ID: "c1", Title: "Go"},
		[]content.Module{
			{ID: "m1", CourseID: "c1", Position: 1},
			{ID: "m2", CourseID: "c1", Position: 2},
		},
		map[string][]content.Lesson{
			"m1": {
				{ID: "l1", ModuleID: "m1", Type: content.LessonText, Position: 1},
				{ID: "l2", ModuleID: "m1", Type: content.LessonVideo, Position: 2},
			},
			"m2": {
				{ID: "l3", ModuleID: "m2", Type: content.LessonQuiz, Position: 1},
			},
		},
	)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	return tree
}

func gappyTree(t *testing.T) *content.Tree {
	t.Helper()
	// middle module carries no lessons: navigation must skip it
	tree, err := content.BuildTree(
		content.Course{ID: "c2"},
		[]content.Module{
			{ID: "m1", Position: 1},
			{ID: "m2", Position: 2},
			{ID: "m3", Position: 3},
		},
		map[string][]content.Lesson{
			"m1": {{ID: "l1", ModuleID: "m1", Type: content.LessonText, Position: 1}},
			"m3": {{ID: "l2", ModuleID: "m3", Type: content.LessonText, Position: 1}},
		},
	)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	return tree
}

func completed(lessonIDs ...string) []ProgressRecord {
	out := make([]ProgressRecord, 0, len(lessonIDs))
	for _, id := range lessonIDs {
		out = append(out, ProgressRecord{UserID: "u1", LessonID: id, CourseID: "c1", Completed: true})
	}
	return out
}

func TestResumePosition(t *testing.T) {
	tree := twoModuleTree(t)

	cases := []struct {
		name    string
		records []ProgressRecord
		want    Position
	}{
		{"no progress", nil, Position{0, 0}},
		{"first lesson done", completed("l1"), Position{0, 1}},
		{"first module done", completed("l1", "l2"), Position{1, 0}},
		{"everything done", completed("l1", "l2", "l3"), Position{1, 0}},
		{"out of order completion", completed("l2"), Position{0, 0}},
		{"incomplete record ignored", []ProgressRecord{{LessonID: "l1", Completed: false}}, Position{0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResumePosition(tree, tc.records)
			if err != nil {
				t.Fatalf("ResumePosition: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestResumePositionEmptyCourse(t *testing.T) {
	tree, err := content.BuildTree(content.Course{ID: "empty"}, nil, nil)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	_, err = ResumePosition(tree, nil)
	var ece *EmptyCourseError
	if !errors.As(err, &ece) {
		t.Fatalf("want EmptyCourseError, got %v", err)
	}
	if ece.CourseID != "empty" {
		t.Fatalf("CourseID = %q", ece.CourseID)
	}
}

func TestAdvanceRetreat(t *testing.T) {
	tree := twoModuleTree(t)

	order := []Position{{0, 0}, {0, 1}, {1, 0}}
	for i := 0; i < len(order)-1; i++ {
		if got := Advance(tree, order[i]); got != order[i+1] {
			t.Fatalf("Advance(%+v) = %+v, want %+v", order[i], got, order[i+1])
		}
		if got := Retreat(tree, order[i+1]); got != order[i] {
			t.Fatalf("Retreat(%+v) = %+v, want %+v", order[i+1], got, order[i])
		}
	}

	// boundaries are no-ops
	if got := Advance(tree, Position{1, 0}); got != (Position{1, 0}) {
		t.Fatalf("Advance at end = %+v", got)
	}
	if got := Retreat(tree, Position{0, 0}); got != (Position{0, 0}) {
		t.Fatalf("Retreat at start = %+v", got)
	}
}

func TestAdvanceRetreatSkipEmptyModules(t *testing.T) {
	tree := gappyTree(t)

	if got := Advance(tree, Position{0, 0}); got != (Position{2, 0}) {
		t.Fatalf("Advance over empty module = %+v, want {2 0}", got)
	}
	if got := Retreat(tree, Position{2, 0}); got != (Position{0, 0}) {
		t.Fatalf("Retreat over empty module = %+v, want {0 0}", got)
	}
}

func TestJumpTo(t *testing.T) {
	tree := twoModuleTree(t)

	pos, err := JumpTo(tree, 1, 0)
	if err != nil {
		t.Fatalf("JumpTo: %v", err)
	}
	if pos != (Position{1, 0}) {
		t.Fatalf("JumpTo = %+v", pos)
	}

	for _, idx := range [][2]int{{2, 0}, {0, 2}, {-1, 0}, {0, -1}} {
		_, err := JumpTo(tree, idx[0], idx[1])
		var oor *OutOfRangeError
		if !errors.As(err, &oor) {
			t.Fatalf("JumpTo(%d,%d): want OutOfRangeError, got %v", idx[0], idx[1], err)
		}
	}
}

func TestProgressPercent(t *testing.T) {
	tree := twoModuleTree(t)

	cases := []struct {
		name    string
		records []ProgressRecord
		want    int
	}{
		{"none", nil, 0},
		{"one of three", completed("l1"), 33},
		{"two of three", completed("l1", "l2"), 67},
		{"all", completed("l1", "l2", "l3"), 100},
		{"unknown lesson ignored", completed("ghost"), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CourseProgressPercent(tree, tc.records); got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}

	if got := ModuleProgressPercent(tree.Modules[0], completed("l1")); got != 50 {
		t.Fatalf("module percent = %d, want 50", got)
	}
	if got := ModuleProgressPercent(tree.Modules[1], nil); got != 0 {
		t.Fatalf("module percent = %d, want 0", got)
	}
}
