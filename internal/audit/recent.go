package audit

import (
	"encoding/json"
	"os"
)

const defaultRecentLimit = 50

// ReadRecent returns up to limit entries, newest first. It walks the monthly
// files from newest to oldest until the limit is satisfied, so a query near
// the start of a month still sees last month's entries. Lines that fail to
// parse are skipped — flagging them is the Verifier's job, not the reader's.
// Missing files yield an empty result.
func (t *Trail) ReadRecent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	files, err := monthlyFiles(t.baseDir())
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, limit)
	for _, f := range files {
		if len(out) >= limit {
			break
		}
		data, err := os.ReadFile(f)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		lines := splitLines(data)
		for i := len(lines) - 1; i >= 0 && len(out) < limit; i-- {
			var e Entry
			if err := json.Unmarshal(lines[i], &e); err != nil {
				continue
			}
			out = append(out, e)
		}
	}
	return out, nil
}
