package course

import "errors"

var (
	ErrNotFound        = errors.New("course not found")
	ErrAlreadyEnrolled = errors.New("user already enrolled")
	ErrNotEnrolled     = errors.New("user not enrolled")
)

// Difficulty levels a course can declare.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

type Course struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Category     string `json:"category,omitempty"`
	Difficulty   string `json:"difficulty,omitempty"`
	InstructorID string `json:"instructor_id"`
	CreatedAt    int64  `json:"created_at,omitempty"`
}

// Enrollment links one user to one course; the pair is unique.
type Enrollment struct {
	CourseID   string `json:"course_id"`
	UserID     string `json:"user_id"`
	EnrolledAt int64  `json:"enrolled_at"`
}
