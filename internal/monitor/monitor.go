package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/viniciushammett/go-audit-trail/internal/audit"
	"github.com/viniciushammett/go-audit-trail/internal/logger"
	"github.com/viniciushammett/go-audit-trail/internal/metrics"
	"github.com/viniciushammett/go-audit-trail/internal/notify"
)

// Monitor re-verifies the active chain on an interval and alerts on the
// first breakage. It only reads the log, so it can run alongside writers;
// a probe that races a month rollover may see a mid-rotation state and
// simply reports again on the next tick.
type Monitor struct {
	log      *logger.Logger
	trail    *audit.Trail
	notifier *notify.Notifier
	interval time.Duration

	wasValid bool
}

func New(log *logger.Logger, trail *audit.Trail, n *notify.Notifier, interval time.Duration) *Monitor {
	return &Monitor{log: log, trail: trail, notifier: n, interval: interval, wasValid: true}
}

func (m *Monitor) Run(ctx context.Context) {
	t := time.NewTicker(m.interval)
	defer t.Stop()

	m.log.Info().Dur("interval", m.interval).Msg("integrity monitor started")

	// Primeiro disparo imediato
	m.check()

	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("integrity monitor stopped")
			return
		case <-t.C:
			m.check()
		}
	}
}

func (m *Monitor) check() {
	metrics.VerifyRuns.Inc()
	rep, err := m.trail.VerifyCurrent()
	if err != nil {
		m.log.Error().Err(err).Msg("verify failed")
		return
	}
	if rep.Valid {
		metrics.ChainValid.Set(1)
		m.wasValid = true
		m.log.Debug().Int("entries", rep.Entries).Msg("chain ok")
		return
	}

	metrics.ChainValid.Set(0)
	m.log.Error().
		Int("entries", rep.Entries).
		Int("firstBroken", *rep.FirstBroken).
		Str("path", m.trail.CurrentPath()).
		Msg("audit chain broken")
	if m.wasValid {
		// Alerta só na transição, não a cada tick.
		if err := m.notifier.Send(fmt.Sprintf(
			":rotating_light: *Audit chain broken* in `%s` at entry %d",
			m.trail.CurrentPath(), *rep.FirstBroken)); err != nil {
			m.log.Warn().Err(err).Msg("slack notify failed")
		}
	}
	m.wasValid = false
}
