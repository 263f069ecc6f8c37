package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"waypoint/internal/domain/model"
	locationRepository "waypoint/internal/domain/repository/location"
	"waypoint/pkg/logger"
)

// Store keeps the latest device fix per user and hands out fresh ones.
type Store struct {
	redis     *redis.Client
	timeout   time.Duration
	maxFixAge time.Duration
	now       func() time.Time
}

// NewStore falls back to DefaultTimeout and DefaultMaxFixAge for unset values.
func NewStore(rdb *redis.Client, cfg Config) *Store {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxFixAge <= 0 {
		cfg.MaxFixAge = DefaultMaxFixAge
	}

	return &Store{
		redis:     rdb,
		timeout:   time.Duration(cfg.Timeout) * time.Millisecond,
		maxFixAge: time.Duration(cfg.MaxFixAge) * time.Second,
		now:       time.Now,
	}
}

func fixKey(userID string) string     { return "fix:" + userID }
func fixChannel(userID string) string { return "fix-events:" + userID }

func (s *Store) Report(ctx context.Context, userID string, fix model.Fix) error {
	if fix.Latitude < -90 || fix.Latitude > 90 || fix.Longitude < -180 || fix.Longitude > 180 {
		return locationRepository.ErrInvalidFix
	}
	if fix.ReportedAt.IsZero() {
		fix.ReportedAt = s.now()
	}

	data, err := json.Marshal(fix)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, fixKey(userID), data, s.maxFixAge).Err(); err != nil {
		return err
	}

	return s.redis.Publish(ctx, fixChannel(userID), data).Err()
}

// Locate returns the last fix when it is fresh enough, otherwise it waits for
// the next report until the configured timeout elapses.
func (s *Store) Locate(ctx context.Context, userID string) (model.Fix, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sub := s.redis.Subscribe(ctx, fixChannel(userID))
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return model.Fix{}, fmt.Errorf("%w: %w", locationRepository.ErrUnavailable, err)
	}

	if fix, ok := s.last(ctx, userID); ok {
		return fix, nil
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return model.Fix{}, fmt.Errorf("%w: %w", locationRepository.ErrUnavailable, ctx.Err())
		case msg, ok := <-ch:
			if !ok {
				return model.Fix{}, locationRepository.ErrUnavailable
			}

			var fix model.Fix
			if err := json.Unmarshal([]byte(msg.Payload), &fix); err != nil {
				logger.Warn("dropping malformed fix", "user", userID, "err", err)

				continue
			}

			return fix, nil
		}
	}
}

func (s *Store) last(ctx context.Context, userID string) (model.Fix, bool) {
	data, err := s.redis.Get(ctx, fixKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("failed to read last fix", "user", userID, "err", err)
		}

		return model.Fix{}, false
	}

	var fix model.Fix
	if err := json.Unmarshal(data, &fix); err != nil {
		return model.Fix{}, false
	}

	if s.now().Sub(fix.ReportedAt) > s.maxFixAge {
		return model.Fix{}, false
	}

	return fix, true
}
