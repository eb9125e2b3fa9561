package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"
)

// Notifier posts alerts to a Slack incoming webhook. Disabled or without a
// webhook it is a no-op, so callers never need to branch.
type Notifier struct {
	webhook string
	enabled bool
}

func New(webhook string, enabled bool) *Notifier {
	return &Notifier{webhook: webhook, enabled: enabled}
}

type payload struct {
	Text string `json:"text"`
}

func (n *Notifier) Send(text string) error {
	if !n.enabled || n.webhook == "" {
		return nil
	}
	b, _ := json.Marshal(payload{Text: text})
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(n.webhook, "application/json", bytes.NewReader(b))
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}
