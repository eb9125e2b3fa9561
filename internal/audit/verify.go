package audit

import (
	"encoding/json"
	"fmt"
	"os"
)

// Report is the result of a verification pass.
type Report struct {
	Valid       bool `json:"valid"`
	Entries     int  `json:"entries"`
	FirstBroken *int `json:"firstBroken,omitempty"`
}

// Verify recomputes the hash chain of one log file. A missing or empty file
// is a valid empty chain. Every non-empty line is counted even after a break,
// so Entries is always the total line count; FirstBroken is the index of the
// first line that fails to parse or whose integrity does not match the
// SHA-256 of the previous raw line. The first line must have integrity "".
//
// Detection semantics worth knowing: tampering the content of entry k (k>0)
// without touching its own integrity field shows up at index k+1, because
// k+1's expected hash is computed from k's now-different bytes. Tampering
// the last entry of the file has no successor to catch it — an inherent
// limit of a backward-only chain, not a bug.
func Verify(path string) (Report, error) {
	return VerifyFrom(path, "")
}

// VerifyFrom verifies a file whose first entry is expected to chain onto
// prev. The chain continues across monthly rotation, so verifying any file
// other than the oldest needs the previous file's tail hash; Verify is the
// prev=="" anchor case.
func VerifyFrom(path string, prev string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Report{Valid: true}, nil
		}
		return Report{}, fmt.Errorf("read log: %w", err)
	}

	lines := splitLines(data)
	var firstBroken *int

	mark := func(i int) {
		if firstBroken == nil {
			idx := i
			firstBroken = &idx
		}
	}

	expected := prev
	for i, line := range lines {
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			mark(i)
		} else if e.Integrity != expected {
			mark(i)
		}
		// Próximo elo é sempre o hash da linha crua, quebrada ou não.
		expected = hashLine(line)
	}

	return Report{Valid: firstBroken == nil, Entries: len(lines), FirstBroken: firstBroken}, nil
}

// FileReport pairs a monthly file with its verification result.
type FileReport struct {
	Path   string `json:"path"`
	Report Report `json:"report"`
}

// VerifyAll verifies every monthly file under baseDir as one continuous
// chain, oldest first, carrying the tail hash across file boundaries.
// Reports come back in chronological order.
func VerifyAll(baseDir string) ([]FileReport, error) {
	files, err := monthlyFiles(baseDir)
	if err != nil {
		return nil, err
	}
	// monthlyFiles é newest-first; a cadeia anda do mais antigo ao mais novo.
	for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
		files[i], files[j] = files[j], files[i]
	}

	var out []FileReport
	prev := ""
	for _, f := range files {
		rep, err := VerifyFrom(f, prev)
		if err != nil {
			return nil, err
		}
		out = append(out, FileReport{Path: f, Report: rep})

		line, err := lastLine(f)
		if err != nil {
			return nil, err
		}
		if line != nil {
			prev = hashLine(line)
		}
	}
	return out, nil
}

// VerifyCurrent verifies the active monthly file, seeded from the previous
// month's tail when one exists. This is what the integrity monitor runs.
func (t *Trail) VerifyCurrent() (Report, error) {
	base := t.baseDir()
	cur := logPath(base, t.nowFn())

	prev := ""
	files, err := monthlyFiles(base)
	if err != nil {
		return Report{}, err
	}
	for _, f := range files {
		if f >= cur {
			continue
		}
		line, err := lastLine(f)
		if err != nil {
			return Report{}, err
		}
		if line != nil {
			prev = hashLine(line)
			break
		}
	}
	return VerifyFrom(cur, prev)
}
