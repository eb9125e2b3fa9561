package settings

import (
	"fmt"

	"github.com/viniciushammett/go-audit-trail/internal/audit"
)

// Service is the audited settings surface: every change lands in the store
// and appends one entry to the audit trail. If the audit append fails the
// update is reported as failed even though the value was stored — the caller
// retries and the trail catches up; silently skipping the trail would not.
type Service struct {
	store *Store
	trail *audit.Trail
}

func NewService(store *Store, trail *audit.Trail) *Service {
	return &Service{store: store, trail: trail}
}

func (s *Service) Get(key string) (Setting, error) { return s.store.Get(key) }
func (s *Service) List() ([]Setting, error)        { return s.store.List() }

func (s *Service) Update(key, value, actor string) (Setting, error) {
	set, err := s.store.Put(key, value, actor)
	if err != nil {
		return Setting{}, fmt.Errorf("store setting: %w", err)
	}
	_, err = s.trail.Append(audit.Input{
		Action:   "settings.update",
		Actor:    actor,
		Resource: key,
		Details:  map[string]any{"revision": set.Revision},
	})
	if err != nil {
		return Setting{}, fmt.Errorf("audit settings change: %w", err)
	}
	return set, nil
}
