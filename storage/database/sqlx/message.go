package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/madamaths/madamaths/core/message"
	"github.com/madamaths/madamaths/storage/database"
)

type messageRepository struct {
	db *sqlx.DB
}

var _ message.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(db *sqlx.DB) *messageRepository {
	return &messageRepository{db: db}
}

func (repo messageRepository) CreateMessage(ctx context.Context, msg message.Message) (message.Message, error) {
	q := repo.db.Rebind(`
		INSERT INTO messages (sender_id, receiver_id, content, created_at)
		VALUES (?, ?, ?, ?) RETURNING id`)

	err := repo.db.QueryRowxContext(ctx, q, msg.SenderID, msg.ReceiverID, msg.Content, msg.CreatedAt.UTC()).Scan(&msg.ID)
	switch {
	case err == nil:
	case database.IsForeignKeyViolation(err):
		return message.Message{}, message.ErrReceiverNotFound
	default:
		return message.Message{}, errors.Wrap(err, "inserting message")
	}

	q = repo.db.Rebind(`SELECT full_name FROM accounts WHERE id = ?`)
	if err = repo.db.GetContext(ctx, &msg.SenderName, q, msg.SenderID); err != nil {
		return message.Message{}, errors.Wrap(err, "getting sender name")
	}
	return msg, nil
}

func (repo messageRepository) QueryMessages(ctx context.Context, accountID int64) ([]message.Message, error) {
	q := repo.db.Rebind(`
		SELECT m.id, m.sender_id, m.receiver_id, m.content, m.created_at, a.full_name AS sender_name
		FROM messages m
		JOIN accounts a ON a.id = m.sender_id
		WHERE m.sender_id = ? OR m.receiver_id = ?
		ORDER BY m.created_at DESC, m.id DESC`)

	msgs := make([]message.Message, 0)
	if err := repo.db.SelectContext(ctx, &msgs, q, accountID, accountID); err != nil {
		return nil, errors.Wrap(err, "selecting messages")
	}
	return msgs, nil
}

func (repo messageRepository) CreateAnnouncement(ctx context.Context, ann message.Announcement) (message.Announcement, error) {
	q := repo.db.Rebind(`
		INSERT INTO announcements (class_id, teacher_id, content, created_at)
		VALUES (?, ?, ?, ?) RETURNING id`)

	err := repo.db.QueryRowxContext(ctx, q, ann.ClassID, ann.TeacherID, ann.Content, ann.CreatedAt.UTC()).Scan(&ann.ID)
	switch {
	case err == nil:
	case database.IsForeignKeyViolation(err):
		return message.Announcement{}, message.ErrClassNotFound
	default:
		return message.Announcement{}, errors.Wrap(err, "inserting announcement")
	}

	q = repo.db.Rebind(`SELECT full_name FROM accounts WHERE id = ?`)
	if err = repo.db.GetContext(ctx, &ann.TeacherName, q, ann.TeacherID); err != nil {
		return message.Announcement{}, errors.Wrap(err, "getting teacher name")
	}
	return ann, nil
}

func (repo messageRepository) QueryAnnouncements(ctx context.Context, classID int64) ([]message.Announcement, error) {
	q := repo.db.Rebind(`
		SELECT n.id, n.class_id, n.teacher_id, n.content, n.created_at, a.full_name AS teacher_name
		FROM announcements n
		JOIN accounts a ON a.id = n.teacher_id
		WHERE n.class_id = ?
		ORDER BY n.created_at DESC, n.id DESC`)

	anns := make([]message.Announcement, 0)
	if err := repo.db.SelectContext(ctx, &anns, q, classID); err != nil {
		return nil, errors.Wrap(err, "selecting announcements")
	}
	return anns, nil
}
