package lesson

import (
	"errors"

	"github.com/swahili-learn/backend/internal/visibility"
)

var (
	ErrNotFound       = errors.New("lesson not found")
	ErrInvalidContent = errors.New("invalid content type")
)

// Content types a lesson can carry.
const (
	ContentVideo = "video"
	ContentAudio = "audio"
	ContentPDF   = "pdf"
	ContentText  = "text"
)

// Lesson is one ordered module inside a course. Its visibility rule lives
// and dies with the lesson; there is no separate lifecycle.
type Lesson struct {
	ID          string          `json:"id"`
	CourseID    string          `json:"course_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	ContentType string          `json:"content_type"`
	ContentURL  string          `json:"content_url,omitempty"`
	Position    int             `json:"position"`
	Visibility  visibility.Rule `json:"visibility"`
	CreatedAt   int64           `json:"created_at,omitempty"`
	UpdatedAt   int64           `json:"updated_at,omitempty"`
}

func validContentType(ct string) bool {
	switch ct {
	case ContentVideo, ContentAudio, ContentPDF, ContentText:
		return true
	}
	return false
}
