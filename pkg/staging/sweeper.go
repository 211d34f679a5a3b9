package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethanbaker/soundscript/pkg/utils"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Sweeper defaults
const (
	DefaultSweepSchedule = "@hourly"
	DefaultRetention     = 24 * time.Hour
)

// Sweeper periodically removes staged files older than the retention
type Sweeper struct {
	area      *Area
	retention time.Duration
	cron      *cron.Cron
	now       func() time.Time
	logger    zerolog.Logger
}

// NewSweeper schedules sweeps of area on the given cron schedule
func NewSweeper(area *Area, retention time.Duration, schedule string) (*Sweeper, error) {
	s := &Sweeper{
		area:      area,
		retention: retention,
		cron:      cron.New(),
		now:       time.Now,
		logger:    utils.Component("staging"),
	}

	if _, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.Sweep(); err != nil {
			s.logger.Error().Err(err).Msg("[STAGING]: sweep failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	return s, nil
}

// NewSweeperFromConfig reads STAGING_RETENTION and STAGING_SWEEP_CRON
func NewSweeperFromConfig(area *Area, cfg *utils.Config) (*Sweeper, error) {
	return NewSweeper(
		area,
		cfg.GetDurationWithDefault("STAGING_RETENTION", DefaultRetention),
		cfg.GetWithDefault("STAGING_SWEEP_CRON", DefaultSweepSchedule),
	)
}

// Start begins running scheduled sweeps
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep removes regular files last modified before the retention window and
// returns how many were removed. A missing staging directory is not an error
func (s *Sweeper) Sweep() (int, error) {
	entries, err := os.ReadDir(s.area.Dir())
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read staging directory: %w", err)
	}

	cutoff := s.now().Add(-s.retention)
	removed := 0

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(s.area.Dir(), entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", path).Msg("[STAGING]: could not remove stale file")
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("[STAGING]: swept stale uploads")
	}

	return removed, nil
}
