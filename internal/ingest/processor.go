package ingest

import (
	"fmt"

	"github.com/viniciushammett/go-audit-trail/internal/audit"
	"github.com/viniciushammett/go-audit-trail/internal/logger"
	"github.com/viniciushammett/go-audit-trail/internal/metrics"
	"github.com/viniciushammett/go-audit-trail/internal/notify"
	"github.com/viniciushammett/go-audit-trail/internal/rules"
)

type Processor struct {
	log      *logger.Logger
	trail    *audit.Trail
	rules    *rules.Set
	notifier *notify.Notifier
}

func NewProcessor(log *logger.Logger, trail *audit.Trail, rs *rules.Set, n *notify.Notifier) *Processor {
	return &Processor{log: log, trail: trail, rules: rs, notifier: n}
}

type Incoming struct {
	Action   string         `json:"action"`
	Actor    string         `json:"actor"`
	Resource string         `json:"resource,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

func (p *Processor) Handle(in Incoming) (audit.Entry, error) {
	e, err := p.trail.Append(audit.Input{
		Action:   in.Action,
		Actor:    in.Actor,
		Resource: in.Resource,
		Details:  in.Details,
	})
	if err != nil {
		metrics.AppendFailures.Inc()
		return audit.Entry{}, err
	}

	metrics.EntriesAppended.WithLabelValues(e.Action).Inc()
	if match, rule := p.rules.Match(e.Action, e.Resource); match {
		metrics.SensitiveMatches.WithLabelValues(rule).Inc()
		if err := p.notifier.Send(fmt.Sprintf(
			":rotating_light: *Sensitive action* `%s` by *%s* on `%s`\n_rule: %s_",
			e.Action, e.Actor, e.Resource, rule)); err != nil {
			p.log.Warn().Err(err).Str("rule", rule).Msg("slack notify failed")
		}
	}
	return e, nil
}
