package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/LeiBaylon/kolekkita-backend/pkg/db/models"
	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
	"github.com/LeiBaylon/kolekkita-backend/pkg/pagination"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  campaign_id TEXT,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  data TEXT,
  is_read INTEGER NOT NULL DEFAULT 0,
  read_at DATETIME,
  sent_at DATETIME NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func createNotification(t *testing.T, db *gorm.DB, userID uuid.UUID, campaignID *uuid.UUID, created time.Time, read bool) *models.Notification {
	t.Helper()

	n := &models.Notification{
		ID:         uuid.New(),
		UserID:     userID,
		CampaignID: campaignID,
		Type:       enums.NotificationTypeAnnouncement,
		Title:      "Test Title",
		Message:    "Test Message",
		IsRead:     read,
		SentAt:     created,
		CreatedAt:  created,
	}
	require.NoError(t, db.Create(n).Error)
	return n
}

func TestRepositoryList_paginationAndUnreadFilter(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	now := time.Now().UTC()
	oldest := createNotification(t, db, userID, nil, now.Add(-2*time.Hour), true)
	middle := createNotification(t, db, userID, nil, now.Add(-time.Hour), false)
	newest := createNotification(t, db, userID, nil, now, false)
	createNotification(t, db, uuid.New(), nil, now, false) // other user

	rows, next, err := repo.List(context.Background(), ListNotificationsParams{UserID: userID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newest.ID, rows[0].ID)
	assert.Equal(t, middle.ID, rows[1].ID)
	require.NotNil(t, next)

	rows, next, err = repo.List(context.Background(), ListNotificationsParams{UserID: userID, Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, oldest.ID, rows[0].ID)
	assert.Nil(t, next)

	rows, _, err = repo.List(context.Background(), ListNotificationsParams{UserID: userID, UnreadOnly: true, Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.False(t, row.IsRead)
	}
}

func TestRepositoryMarkRead_scopedToOwner(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)

	owner := uuid.New()
	stranger := uuid.New()
	n := createNotification(t, db, owner, nil, time.Now().UTC(), false)

	updated, err := repo.MarkRead(context.Background(), n.ID, stranger)
	require.NoError(t, err)
	assert.False(t, updated)

	updated, err = repo.MarkRead(context.Background(), n.ID, owner)
	require.NoError(t, err)
	assert.True(t, updated)

	var stored models.Notification
	require.NoError(t, db.First(&stored, "id = ?", n.ID).Error)
	assert.True(t, stored.IsRead)
	assert.NotNil(t, stored.ReadAt)
}

func TestRepositoryMarkAllRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	now := time.Now().UTC()
	createNotification(t, db, userID, nil, now, false)
	createNotification(t, db, userID, nil, now, false)
	createNotification(t, db, userID, nil, now, true)

	count, err := repo.MarkAllRead(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	unread, err := repo.CountUnread(context.Background(), userID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestRepositoryCountByCampaign(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)

	campaignID := uuid.New()
	now := time.Now().UTC()
	createNotification(t, db, uuid.New(), &campaignID, now, false)
	createNotification(t, db, uuid.New(), &campaignID, now, false)
	createNotification(t, db, uuid.New(), nil, now, false)

	count, err := repo.CountByCampaign(context.Background(), campaignID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRepositoryDeleteOlderThan(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	now := time.Now().UTC()
	old := createNotification(t, db, userID, nil, now.AddDate(0, 0, -40), true)
	recent := createNotification(t, db, userID, nil, now.AddDate(0, 0, -5), false)

	deleted, err := repo.DeleteOlderThan(context.Background(), now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []models.Notification
	require.NoError(t, db.Where("user_id = ?", userID).Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, recent.ID, remaining[0].ID)
	_ = old
}

func TestRepositoryList_cursorRoundTrip(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		createNotification(t, db, userID, nil, now.Add(-time.Duration(i)*time.Minute), false)
	}

	_, next, err := repo.List(context.Background(), ListNotificationsParams{UserID: userID, Limit: 1})
	require.NoError(t, err)
	require.NotNil(t, next)

	encoded := pagination.EncodeCursor(*next)
	parsed, err := pagination.ParseCursor(encoded)
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, next.ID, parsed.ID)
	assert.True(t, next.CreatedAt.Equal(parsed.CreatedAt))
}
