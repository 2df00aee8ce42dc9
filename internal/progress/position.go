package progress

import (
	"math"

	"github.com/pathwise/pathwise-lms/internal/content"
)

// Position is the explicit player location: 0-based indices into the ordered
// module and lesson lists. It is a value threaded through every call; nothing
// in the engine holds a current position.
type Position struct {
	ModuleIndex int `json:"module_index"`
	LessonIndex int `json:"lesson_index"`
}

// ResumePosition walks modules then lessons in order and returns the first
// lesson without a completed record. When every lesson is completed it
// returns the last lesson's position (terminal state).
func ResumePosition(tree *content.Tree, records []ProgressRecord) (Position, error) {
	if tree.LessonCount() == 0 {
		return Position{}, &EmptyCourseError{CourseID: tree.Course.ID}
	}
	done := make(map[string]bool, len(records))
	for _, r := range records {
		if r.Completed {
			done[r.LessonID] = true
		}
	}
	last := Position{}
	for mi, m := range tree.Modules {
		for li, l := range m.Lessons {
			if !done[l.ID] {
				return Position{ModuleIndex: mi, LessonIndex: li}, nil
			}
			last = Position{ModuleIndex: mi, LessonIndex: li}
		}
	}
	return last, nil
}

// Advance moves to the next lesson in traversal order. At the last lesson of
// the last module it returns the same position.
func Advance(tree *content.Tree, pos Position) Position {
	if pos.LessonIndex+1 < len(tree.Modules[pos.ModuleIndex].Lessons) {
		return Position{ModuleIndex: pos.ModuleIndex, LessonIndex: pos.LessonIndex + 1}
	}
	for mi := pos.ModuleIndex + 1; mi < len(tree.Modules); mi++ {
		if len(tree.Modules[mi].Lessons) > 0 {
			return Position{ModuleIndex: mi, LessonIndex: 0}
		}
	}
	return pos
}

// Retreat is the inverse of Advance; a no-op at the first lesson of the
// first module.
func Retreat(tree *content.Tree, pos Position) Position {
	if pos.LessonIndex > 0 {
		return Position{ModuleIndex: pos.ModuleIndex, LessonIndex: pos.LessonIndex - 1}
	}
	for mi := pos.ModuleIndex - 1; mi >= 0; mi-- {
		if n := len(tree.Modules[mi].Lessons); n > 0 {
			return Position{ModuleIndex: mi, LessonIndex: n - 1}
		}
	}
	return pos
}

// JumpTo validates direct navigation to the given indices.
func JumpTo(tree *content.Tree, moduleIdx, lessonIdx int) (Position, error) {
	if _, ok := tree.LessonAt(moduleIdx, lessonIdx); !ok {
		return Position{}, &OutOfRangeError{ModuleIndex: moduleIdx, LessonIndex: lessonIdx}
	}
	return Position{ModuleIndex: moduleIdx, LessonIndex: lessonIdx}, nil
}

// CourseProgressPercent is round(100 * completed / total) over the whole
// tree. An empty course reports 0.
func CourseProgressPercent(tree *content.Tree, records []ProgressRecord) int {
	return percent(tree.LessonIDs(), records)
}

// ModuleProgressPercent is the same ratio scoped to one module's lessons.
func ModuleProgressPercent(module content.ModuleNode, records []ProgressRecord) int {
	ids := make([]string, 0, len(module.Lessons))
	for _, l := range module.Lessons {
		ids = append(ids, l.ID)
	}
	return percent(ids, records)
}

func percent(lessonIDs []string, records []ProgressRecord) int {
	if len(lessonIDs) == 0 {
		return 0
	}
	done := make(map[string]bool, len(records))
	for _, r := range records {
		if r.Completed {
			done[r.LessonID] = true
		}
	}
	completed := 0
	for _, id := range lessonIDs {
		if done[id] {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(lessonIDs))))
}
