package content

import (
	"fmt"
	"sort"
)

// MalformedContentError reports a parent whose children carry duplicate,
// non-positive, or non-contiguous positions.
type MalformedContentError struct {
	ParentID string
	Reason   string
}

func (e *MalformedContentError) Error() string {
	return fmt.Sprintf("malformed content under %s: %s", e.ParentID, e.Reason)
}

// ModuleNode is a module plus its ordered lessons.
type ModuleNode struct {
	Module
	Lessons []Lesson `json:"lessons"`
}

// Tree is the fully-populated course hierarchy, sorted by position at every
// level. A Tree is immutable once built; authoring mutations go through the
// store and the tree is rebuilt wholesale.
type Tree struct {
	Course  Course       `json:"course"`
	Modules []ModuleNode `json:"modules"`
}

// BuildTree orders modules and lessons by position and validates that every
// parent's positions are dense and 1-based.
func BuildTree(course Course, modules []Module, lessonsByModule map[string][]Lesson) (*Tree, error) {
	ms := make([]Module, len(modules))
	copy(ms, modules)
	sort.Slice(ms, func(i, j int) bool { return ms[i].Position < ms[j].Position })
	if err := checkPositions(course.ID, modulePositions(ms)); err != nil {
		return nil, err
	}

	t := &Tree{Course: course, Modules: make([]ModuleNode, 0, len(ms))}
	for _, m := range ms {
		ls := make([]Lesson, len(lessonsByModule[m.ID]))
		copy(ls, lessonsByModule[m.ID])
		sort.Slice(ls, func(i, j int) bool { return ls[i].Position < ls[j].Position })
		if err := checkPositions(m.ID, lessonPositions(ls)); err != nil {
			return nil, err
		}
		t.Modules = append(t.Modules, ModuleNode{Module: m, Lessons: ls})
	}
	return t, nil
}

func modulePositions(ms []Module) []int {
	out := make([]int, len(ms))
	for i, m := range ms {
		out[i] = m.Position
	}
	return out
}

func lessonPositions(ls []Lesson) []int {
	out := make([]int, len(ls))
	for i, l := range ls {
		out[i] = l.Position
	}
	return out
}

// checkPositions expects the sorted positions 1..n with no gaps or repeats.
func checkPositions(parentID string, sorted []int) error {
	for i, p := range sorted {
		switch {
		case p <= 0:
			return &MalformedContentError{ParentID: parentID, Reason: fmt.Sprintf("non-positive position %d", p)}
		case i > 0 && p == sorted[i-1]:
			return &MalformedContentError{ParentID: parentID, Reason: fmt.Sprintf("duplicate position %d", p)}
		case p != i+1:
			return &MalformedContentError{ParentID: parentID, Reason: fmt.Sprintf("position gap: want %d, got %d", i+1, p)}
		}
	}
	return nil
}

// LessonCount is the total number of lessons across all modules.
func (t *Tree) LessonCount() int {
	n := 0
	for _, m := range t.Modules {
		n += len(m.Lessons)
	}
	return n
}

// LessonAt returns the lesson at the given 0-based indices.
func (t *Tree) LessonAt(moduleIdx, lessonIdx int) (Lesson, bool) {
	if moduleIdx < 0 || moduleIdx >= len(t.Modules) {
		return Lesson{}, false
	}
	ls := t.Modules[moduleIdx].Lessons
	if lessonIdx < 0 || lessonIdx >= len(ls) {
		return Lesson{}, false
	}
	return ls[lessonIdx], true
}

// LessonIDs lists every lesson ID in traversal order.
func (t *Tree) LessonIDs() []string {
	out := make([]string, 0, t.LessonCount())
	for _, m := range t.Modules {
		for _, l := range m.Lessons {
			out = append(out, l.ID)
		}
	}
	return out
}
