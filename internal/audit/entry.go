package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"
)

// Timestamps são ISO-8601 UTC com milissegundos.
const tsLayout = "2006-01-02T15:04:05.000Z"

// Input is what callers hand to Append. Resource and Details are optional.
type Input struct {
	Action   string         `json:"action"`
	Actor    string         `json:"actor"`
	Resource string         `json:"resource,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

// Entry is the persisted record: one canonical JSON line per entry.
// Field order is part of the wire format — Integrity of entry N is the
// SHA-256 of entry N-1's exact line bytes, so serialization must be
// byte-reproducible: fixed field order (struct order below), omitted
// optionals, no pretty-printing. Map keys inside Details are sorted by
// encoding/json, so Details is reproducible too.
type Entry struct {
	Timestamp string         `json:"timestamp"`
	Action    string         `json:"action"`
	Actor     string         `json:"actor"`
	Resource  string         `json:"resource,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Integrity string         `json:"integrity"`
}

var (
	errNoAction = errors.New("audit: action is required")
	errNoActor  = errors.New("audit: actor is required")
)

// buildLine builds the entry for in chained onto lastHash and returns its
// canonical line bytes (no trailing newline — the newline is never hashed).
func buildLine(in Input, lastHash string, now time.Time) (Entry, []byte, error) {
	if in.Action == "" {
		return Entry{}, nil, errNoAction
	}
	if in.Actor == "" {
		return Entry{}, nil, errNoActor
	}
	e := Entry{
		Timestamp: now.UTC().Format(tsLayout),
		Action:    in.Action,
		Actor:     in.Actor,
		Resource:  in.Resource,
		Details:   in.Details,
		Integrity: lastHash,
	}
	line, err := json.Marshal(e)
	if err != nil {
		return Entry{}, nil, err
	}
	return e, line, nil
}

// hashLine is the chain link: lowercase hex SHA-256 over the raw line bytes.
func hashLine(line []byte) string {
	sum := sha256.Sum256(line)
	return hex.EncodeToString(sum[:])
}
