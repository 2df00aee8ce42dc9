package content

// LessonType distinguishes how a lesson is consumed by the player.
type LessonType string

const (
	LessonText       LessonType = "text"
	LessonVideo      LessonType = "video"
	LessonQuiz       LessonType = "quiz" // references an assessment by ID
	LessonAssignment LessonType = "assignment"
)

func (t LessonType) Valid() bool {
	switch t {
	case LessonText, LessonVideo, LessonQuiz, LessonAssignment:
		return true
	}
	return false
}

type Course struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedBy string `json:"created_by,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

type Module struct {
	ID       string `json:"id"`
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
	Position int    `json:"position"` // 1-based, dense within the course
	Required bool   `json:"required"`
}

type Lesson struct {
	ID           string     `json:"id"`
	ModuleID     string     `json:"module_id"`
	Title        string     `json:"title"`
	Type         LessonType `json:"type"`
	Position     int        `json:"position"` // 1-based, dense within the module
	Required     bool       `json:"required"`
	DurationMin  int        `json:"duration_min"`
	AssessmentID string     `json:"assessment_id,omitempty"` // set for quiz lessons
}
