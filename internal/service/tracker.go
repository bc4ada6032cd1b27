package service

import (
	"MailTrack-Backend/internal/domain"
	"MailTrack-Backend/internal/repository"
	"MailTrack-Backend/pkg/useragent"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TrackerService mints tracking links and records pixel hits. All
// record timestamps are captured in the configured timezone and
// serialized in the record-store textual form.
type TrackerService struct {
	storage  repository.Storage
	location *time.Location
	log      *zap.Logger
	now      func() time.Time
}

// NewTracker creates the tracker service.
func NewTracker(storage repository.Storage, location *time.Location, log *zap.Logger) *TrackerService {
	return &TrackerService{
		storage:  storage,
		location: location,
		log:      log,
		now:      time.Now,
	}
}

// GenerateLink mints a random 128-bit utm_id and registers the link
// together with its global hit-index entry.
func (s *TrackerService) GenerateLink(ctx context.Context, userID int64, mailTitle, mailAddress string) (*domain.TrackingLink, error) {
	link := &domain.TrackingLink{
		UTMID:       uuid.NewString(),
		UserID:      userID,
		MailTitle:   mailTitle,
		MailAddress: mailAddress,
		GeneratedOn: domain.FormatRecordTime(s.now().In(s.location)),
	}

	if err := s.storage.RegisterLink(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to register link: %w", err)
	}

	s.log.Info("tracking link generated",
		zap.String("utm_id", link.UTMID),
		zap.Int64("user_id", userID))
	return link, nil
}

// RecordHit appends a hit event for utm_id, enriching it with parsed
// user-agent details when a parser is available. The caller has
// already validated the utm_id against the hit index and excluded
// owner self-views.
func (s *TrackerService) RecordHit(ctx context.Context, utmID, ipAddress, userAgent string) error {
	hit := &domain.HitEvent{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		AccessedOn: domain.FormatRecordTime(s.now().In(s.location)),
	}

	if parser := useragent.GetGlobalParser(); parser != nil {
		info := parser.ParseUserAgent(userAgent)
		hit.DeviceType = &info.DeviceType
		hit.Browser = &info.Browser
		hit.OS = &info.OS
	} else {
		deviceType := useragent.ClassifyDevice(userAgent)
		hit.DeviceType = &deviceType
	}

	if err := s.storage.AppendHit(ctx, utmID, hit); err != nil {
		return fmt.Errorf("failed to append hit: %w", err)
	}

	s.log.Info("hit recorded",
		zap.String("utm_id", utmID),
		zap.String("ip", ipAddress))
	return nil
}
