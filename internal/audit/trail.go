package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrCorruptTail means the last line of the log could not be parsed when the
// chain state seeded itself. Continuing would chain new entries onto an
// unverifiable base, so writes are refused until the operator intervenes.
var ErrCorruptTail = errors.New("audit: corrupt tail line, refusing to seed chain")

// Trail is the tamper-evident audit log: an append-only JSONL file per month
// where each entry carries the SHA-256 of the previous entry's line.
//
// All writes go through one mutex held across the whole
// read-hash/build/write/update sequence, so concurrent callers can never
// compute their integrity field from the same snapshot of the last hash.
// The mutex stays closed across the file I/O — in Go two appends really can
// run on different OS threads at once.
type Trail struct {
	mu      sync.Mutex
	baseDir func() string
	nowFn   func() time.Time

	seeded   bool
	lastHash string
}

// New creates a Trail rooted at the directory baseDir returns. The callback
// is invoked on every path computation (never cached), so an environment
// override or config change takes effect on the next call.
func New(baseDir func() string) *Trail {
	return &Trail{baseDir: baseDir, nowFn: time.Now}
}

// Append records one entry and returns it with timestamp and integrity
// filled in. Entries complete in the order callers acquire the serializer;
// a failed write never advances the in-memory last hash, so the next
// attempt re-chains from the same base. Not cancellable once entered.
func (t *Trail) Append(in Input) (Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.seeded {
		if err := t.seedLocked(); err != nil {
			return Entry{}, err
		}
	}

	now := t.nowFn()
	e, line, err := buildLine(in, t.lastHash, now)
	if err != nil {
		return Entry{}, err
	}
	if err := appendLine(logPath(t.baseDir(), now), line); err != nil {
		return Entry{}, err
	}
	t.lastHash = hashLine(line)
	return e, nil
}

// Reset drops the in-memory chain state. The next write reseeds from disk,
// exactly as a process restart would.
func (t *Trail) Reset() {
	t.mu.Lock()
	t.seeded = false
	t.lastHash = ""
	t.mu.Unlock()
}

// CurrentPath returns the active monthly log file path. Recomputed per call:
// a month rollover or base-dir change is visible immediately.
func (t *Trail) CurrentPath() string {
	return logPath(t.baseDir(), t.nowFn())
}

// seedLocked recovers the last hash from disk. The chain continues across
// monthly rotation: if the current month's file has no entries yet, the seed
// comes from the newest earlier monthly file. No file anywhere means the
// chain has never been written and the seed is "".
func (t *Trail) seedLocked() error {
	base := t.baseDir()

	line, err := lastLine(logPath(base, t.nowFn()))
	if err != nil {
		return err
	}
	if line == nil {
		files, err := monthlyFiles(base)
		if err != nil {
			return err
		}
		for _, f := range files {
			line, err = lastLine(f)
			if err != nil {
				return err
			}
			if line != nil {
				break
			}
		}
	}

	if line == nil {
		t.lastHash = ""
		t.seeded = true
		return nil
	}

	var e Entry
	if err := json.Unmarshal(line, &e); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptTail, err)
	}
	t.lastHash = hashLine(line)
	t.seeded = true
	return nil
}

// lastLine returns the last non-empty line of path, or nil if the file is
// missing or has no content.
func lastLine(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read log tail: %w", err)
	}
	lines := splitLines(data)
	if len(lines) == 0 {
		return nil, nil
	}
	return lines[len(lines)-1], nil
}

// splitLines splits into non-empty lines, preserving the raw bytes of each.
func splitLines(data []byte) [][]byte {
	var out [][]byte
	for _, l := range bytes.Split(data, []byte{'\n'}) {
		if len(bytes.TrimSpace(l)) > 0 {
			out = append(out, l)
		}
	}
	return out
}

// appendLine creates the parent directory and the file as needed, then
// appends line plus a newline.
func appendLine(path string, line []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}
