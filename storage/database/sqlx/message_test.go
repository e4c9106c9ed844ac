package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madamaths/madamaths/core/account"
	"github.com/madamaths/madamaths/core/message"
	sqlxrepos "github.com/madamaths/madamaths/storage/database/sqlx"
	testutil "github.com/madamaths/madamaths/tests"
)

func TestMessageRepository_Messages(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewMessageRepository(db)
	accRepo := sqlxrepos.NewAccountRepository(db)
	ctx := context.Background()

	alice := testutil.CreateAccount(t, accRepo, "alice", "", "Alice", "", account.RoleTeacher, true)
	bob := testutil.CreateAccount(t, accRepo, "", "S001", "Bob", "", account.RoleStudent, true)
	carol := testutil.CreateAccount(t, accRepo, "", "S002", "Carol", "", account.RoleStudent, true)

	base := time.Now().UTC()
	send := func(from, to int64, content string, at time.Time) message.Message {
		msg, err := repo.CreateMessage(ctx, message.Message{SenderID: from, ReceiverID: to, Content: content, CreatedAt: at})
		require.NoError(t, err)
		return msg
	}
	m1 := send(alice.ID, bob.ID, "hello", base)
	m2 := send(bob.ID, alice.ID, "hi", base.Add(time.Second))
	m3 := send(carol.ID, alice.ID, "question", base.Add(2*time.Second))
	// same timestamp: the later id comes first
	m4 := send(alice.ID, bob.ID, "answer", base.Add(2*time.Second))

	assert.Equal(t, "Alice", m1.SenderName)

	_, err := repo.CreateMessage(ctx, message.Message{SenderID: alice.ID, ReceiverID: 999, Content: "?", CreatedAt: base})
	assert.Equal(t, message.ErrReceiverNotFound, err)

	ids := func(msgs []message.Message) []int64 {
		out := make([]int64, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, m.ID)
		}
		return out
	}

	tests := []struct {
		name    string
		account int64
		want    []int64
	}{
		{name: "alice", account: alice.ID, want: []int64{m4.ID, m3.ID, m2.ID, m1.ID}},
		{name: "bob", account: bob.ID, want: []int64{m4.ID, m2.ID, m1.ID}},
		{name: "carol", account: carol.ID, want: []int64{m3.ID}},
		{name: "nobody", account: 999, want: []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, err := repo.QueryMessages(ctx, tt.account)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(msgs))
		})
	}
}

func TestMessageRepository_Announcements(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewMessageRepository(db)
	ctx := context.Background()

	class := testutil.CreateClass(t, sqlxrepos.NewContentRepository(db), "6A")
	teacher := testutil.CreateAccount(t, sqlxrepos.NewAccountRepository(db), "teach", "", "Teacher", "", account.RoleTeacher, true)

	base := time.Now().UTC()
	a1, err := repo.CreateAnnouncement(ctx, message.Announcement{ClassID: class.ID, TeacherID: teacher.ID, Content: "test friday", CreatedAt: base})
	require.NoError(t, err)
	assert.Equal(t, "Teacher", a1.TeacherName)
	a2, err := repo.CreateAnnouncement(ctx, message.Announcement{ClassID: class.ID, TeacherID: teacher.ID, Content: "moved", CreatedAt: base.Add(time.Second)})
	require.NoError(t, err)

	_, err = repo.CreateAnnouncement(ctx, message.Announcement{ClassID: 999, TeacherID: teacher.ID, Content: "?", CreatedAt: base})
	assert.Equal(t, message.ErrClassNotFound, err)

	anns, err := repo.QueryAnnouncements(ctx, class.ID)
	require.NoError(t, err)
	if assert.Len(t, anns, 2) {
		assert.Equal(t, a2.ID, anns[0].ID)
		assert.Equal(t, a1.ID, anns[1].ID)
	}
}
