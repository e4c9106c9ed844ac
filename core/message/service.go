package message

import (
	"context"
	"time"

	"github.com/madamaths/madamaths/core"
)

var (
	// errors
	ErrReceiverNotFound = core.NewNotFoundError("receiver not found")
	ErrClassNotFound    = core.NewNotFoundError("class not found")
)

type Repository interface {
	// CreateMessage yields ErrReceiverNotFound when the receiver does not exist.
	CreateMessage(ctx context.Context, msg Message) (Message, error)
	// QueryMessages lists the messages sent or received by accountID, newest first.
	QueryMessages(ctx context.Context, accountID int64) ([]Message, error)
	// CreateAnnouncement yields ErrClassNotFound when the class does not exist.
	CreateAnnouncement(ctx context.Context, ann Announcement) (Announcement, error)
	// QueryAnnouncements lists a class's announcements, newest first.
	QueryAnnouncements(ctx context.Context, classID int64) ([]Announcement, error)
}

type Service struct {
	repo    Repository
	nowFunc func() time.Time // mockable
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, nowFunc: time.Now}
}

// Send delivers a message from senderID to any existing account.
func (svc *Service) Send(ctx context.Context, senderID int64, nm NewMessage) (Message, error) {
	return svc.repo.CreateMessage(ctx, Message{
		SenderID:   senderID,
		ReceiverID: nm.ReceiverID,
		Content:    nm.Content,
		CreatedAt:  svc.nowFunc().UTC(),
	})
}

func (svc *Service) Query(ctx context.Context, accountID int64) ([]Message, error) {
	return svc.repo.QueryMessages(ctx, accountID)
}

func (svc *Service) Announce(ctx context.Context, staffID int64, na NewAnnouncement) (Announcement, error) {
	return svc.repo.CreateAnnouncement(ctx, Announcement{
		ClassID:   na.ClassID,
		TeacherID: staffID,
		Content:   na.Content,
		CreatedAt: svc.nowFunc().UTC(),
	})
}

func (svc *Service) QueryAnnouncements(ctx context.Context, classID int64) ([]Announcement, error) {
	return svc.repo.QueryAnnouncements(ctx, classID)
}
