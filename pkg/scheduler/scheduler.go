// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scheduler runs the periodic sweep that closes abandoned
// sessions and episodes users forgot to stop.
package scheduler

import (
	"log"
	"time"

	"github.com/daybook-io/daybook/internal/config"
	"github.com/daybook-io/daybook/internal/store"
)

// Scheduler handles periodic sweeps over active sessions and episodes
type Scheduler struct {
	store    *store.Store
	interval time.Duration
	idleFor  time.Duration
	maxOpen  time.Duration
	stopChan chan bool
}

// NewScheduler creates a new scheduler from sweep settings
func NewScheduler(st *store.Store, cfg config.SchedulerConfig) *Scheduler {
	return &Scheduler{
		store:    st,
		interval: time.Duration(cfg.SweepInterval) * time.Minute,
		idleFor:  time.Duration(cfg.SessionIdleMinutes) * time.Minute,
		maxOpen:  time.Duration(cfg.EpisodeMaxOpenDays) * 24 * time.Hour,
		stopChan: make(chan bool),
	}
}

// Start begins the scheduler
func (s *Scheduler) Start() {
	ticker := time.NewTicker(s.interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.Sweep(time.Now())
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.stopChan <- true
}

// Sweep closes sessions idle past the session limit and episodes open
// past the episode limit. Exposed so a sweep can run on demand.
func (s *Scheduler) Sweep(now time.Time) {
	stopped, err := s.sweepSessions(now)
	if err != nil {
		log.Printf("Session sweep failed: %v", err)
	} else if stopped > 0 {
		log.Printf("Session sweep stopped %d idle session(s)", stopped)
	}

	closed, err := s.sweepEpisodes(now)
	if err != nil {
		log.Printf("Episode sweep failed: %v", err)
	} else if closed > 0 {
		log.Printf("Episode sweep closed %d stale episode(s)", closed)
	}
}

// sweepSessions stops active sessions whose start is older than the idle
// limit. The end time is set to start + idle limit rather than now, so a
// session abandoned overnight does not stretch to the sweep moment.
func (s *Scheduler) sweepSessions(now time.Time) (int, error) {
	sessions, err := s.store.ListActiveSessions()
	if err != nil {
		return 0, err
	}

	cutoff := now.Add(-s.idleFor).UnixMilli()
	stopped := 0
	for i := range sessions {
		ev := &sessions[i]
		if ev.StartAt > cutoff {
			continue
		}
		endMs := ev.StartAt + s.idleFor.Milliseconds()
		if err := s.store.StopEvent(ev.ID, endMs); err != nil {
			return stopped, err
		}
		stopped++
	}
	return stopped, nil
}

// sweepEpisodes closes episodes that have been open longer than the
// maximum open window, ending them at the sweep moment.
func (s *Scheduler) sweepEpisodes(now time.Time) (int, error) {
	episodes, err := s.store.ListActiveEpisodes()
	if err != nil {
		return 0, err
	}

	cutoff := now.Add(-s.maxOpen).UnixMilli()
	closed := 0
	for i := range episodes {
		ep := &episodes[i]
		if ep.StartAt > cutoff {
			continue
		}
		if err := s.store.StopEvent(ep.ID, now.UnixMilli()); err != nil {
			return closed, err
		}
		closed++
	}
	return closed, nil
}
