package service

import (
	"MailTrack-Backend/internal/domain"
	"MailTrack-Backend/internal/repository"
	"MailTrack-Backend/internal/repository/memory"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTracker(t *testing.T) (*TrackerService, *memory.MemStorage) {
	t.Helper()

	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	storage := memory.New()
	tracker := NewTracker(storage, loc, zap.NewNop())
	tracker.now = func() time.Time {
		return time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	}
	return tracker, storage
}

func TestTracker_GenerateLink(t *testing.T) {
	tracker, storage := setupTracker(t)
	ctx := context.Background()

	link, err := tracker.GenerateLink(ctx, 1, "Quarterly report", "recipient@example.com")
	require.NoError(t, err)

	// utm_id is a v4 UUID
	parsed, err := uuid.Parse(link.UTMID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())

	// Generation timestamp is captured in the configured timezone
	assert.Equal(t, "2024-03-01 10:00:00.000000+01:00", link.GeneratedOn)

	// The link is registered together with its hit index entry
	stored, err := storage.GetUserLink(ctx, 1, link.UTMID)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly report", stored.MailTitle)

	indexed, err := storage.HitIndexHas(ctx, link.UTMID)
	require.NoError(t, err)
	assert.True(t, indexed)
}

func TestTracker_GenerateLink_DistinctIDs(t *testing.T) {
	tracker, _ := setupTracker(t)
	ctx := context.Background()

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		link, err := tracker.GenerateLink(ctx, 1, "Title", "recipient@example.com")
		require.NoError(t, err)
		_, dup := seen[link.UTMID]
		require.False(t, dup)
		seen[link.UTMID] = struct{}{}
	}
}

func TestTracker_RecordHit(t *testing.T) {
	tracker, storage := setupTracker(t)
	ctx := context.Background()

	link, err := tracker.GenerateLink(ctx, 1, "Title", "recipient@example.com")
	require.NoError(t, err)

	userAgent := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile/15E148"
	require.NoError(t, tracker.RecordHit(ctx, link.UTMID, "203.0.113.4", userAgent))

	hits, err := storage.ListHits(ctx, link.UTMID)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	hit := hits[0]
	assert.Equal(t, "203.0.113.4", hit.IPAddress)
	assert.Equal(t, userAgent, hit.UserAgent)
	assert.Equal(t, "2024-03-01 10:00:00.000000+01:00", hit.AccessedOn)

	require.NotNil(t, hit.DeviceType)
	assert.Equal(t, "mobile", *hit.DeviceType)
}

func TestTracker_RecordHit_UnregisteredUTMID(t *testing.T) {
	tracker, _ := setupTracker(t)
	ctx := context.Background()

	err := tracker.RecordHit(ctx, "never-registered", "203.0.113.4", "Mozilla/5.0")
	assert.ErrorIs(t, err, repository.ErrNotIndexed)
}

func TestTracker_RecordTimestampsParseBack(t *testing.T) {
	tracker, storage := setupTracker(t)
	ctx := context.Background()

	link, err := tracker.GenerateLink(ctx, 1, "Title", "recipient@example.com")
	require.NoError(t, err)

	_, err = link.GeneratedAt()
	require.NoError(t, err)

	require.NoError(t, tracker.RecordHit(ctx, link.UTMID, "203.0.113.4", "Mozilla/5.0 (Windows NT 10.0)"))
	hits, err := storage.ListHits(ctx, link.UTMID)
	require.NoError(t, err)

	_, err = domain.ParseRecordTime(hits[0].AccessedOn)
	assert.NoError(t, err)
}
