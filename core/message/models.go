package message

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Message is a direct message between two accounts. Messages are never edited.
type Message struct {
	ID         int64     `json:"id" db:"id"`
	SenderID   int64     `json:"sender_id" db:"sender_id"`
	ReceiverID int64     `json:"receiver_id" db:"receiver_id"`
	Content    string    `json:"content" db:"content"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	SenderName string    `json:"sender_name" db:"sender_name"`
}

type NewMessage struct {
	ReceiverID int64  `json:"receiver_id" validate:"required,gt=0"`
	Content    string `json:"content" validate:"required,notblank,max=5000"`
}

func (nm *NewMessage) Validate(validate *validator.Validate) error {
	return validate.Struct(nm)
}

// Announcement is posted by staff to every member of a class.
type Announcement struct {
	ID          int64     `json:"id" db:"id"`
	ClassID     int64     `json:"class_id" db:"class_id"`
	TeacherID   int64     `json:"teacher_id" db:"teacher_id"`
	Content     string    `json:"content" db:"content"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	TeacherName string    `json:"teacher_name" db:"teacher_name"`
}

type NewAnnouncement struct {
	ClassID int64  `json:"class_id" validate:"required,gt=0"`
	Content string `json:"content" validate:"required,notblank,max=5000"`
}

func (na *NewAnnouncement) Validate(validate *validator.Validate) error {
	return validate.Struct(na)
}
