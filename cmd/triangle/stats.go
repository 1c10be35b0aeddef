package main

import (
	"log/slog"
	"time"

	"github.com/loov/hrtime"
)

// frameStats accumulates frame times and reports them every interval
// frames.
type frameStats struct {
	logger   *slog.Logger
	interval int

	start   time.Duration
	count   int
	total   time.Duration
	slowest time.Duration
	skipped int
}

func newFrameStats(logger *slog.Logger, interval int) *frameStats {
	return &frameStats{logger: logger, interval: interval}
}

func (s *frameStats) begin() {
	s.start = hrtime.Now()
}

func (s *frameStats) end(skipped bool) {
	elapsed := hrtime.Since(s.start)
	s.count++
	s.total += elapsed
	s.slowest = max(s.slowest, elapsed)
	if skipped {
		s.skipped++
	}
	if s.count < s.interval {
		return
	}
	s.logger.Info("frame times",
		"frames", s.count,
		"mean", s.total/time.Duration(s.count),
		"slowest", s.slowest,
		"skipped", s.skipped)
	*s = frameStats{logger: s.logger, interval: s.interval}
}
