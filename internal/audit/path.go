package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"
)

// Um arquivo físico por mês: <baseDir>/audit/audit-YYYY-MM.log.
var logNameRe = regexp.MustCompile(`^audit-\d{4}-\d{2}\.log$`)

func logPath(baseDir string, now time.Time) string {
	name := fmt.Sprintf("audit-%s.log", now.UTC().Format("2006-01"))
	return filepath.Join(baseDir, "audit", name)
}

// monthlyFiles lists the monthly log files under baseDir, newest first.
// Lexicographic order on audit-YYYY-MM.log is chronological order.
// A missing directory is an empty log, not an error.
func monthlyFiles(baseDir string) ([]string, error) {
	dir := filepath.Join(baseDir, "audit")
	ents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read audit dir: %w", err)
	}
	var out []string
	for _, e := range ents {
		if e.IsDir() || !logNameRe.MatchString(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}
