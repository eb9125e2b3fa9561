package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestTrail(t *testing.T) (*Trail, string) {
	t.Helper()
	dir := t.TempDir()
	return New(func() string { return dir }), dir
}

func mustUnmarshal(t *testing.T, line []byte, e *Entry) {
	t.Helper()
	if err := json.Unmarshal(line, e); err != nil {
		t.Fatalf("unmarshal %s: %v", line, err)
	}
}

func readLines(t *testing.T, path string) [][]byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return splitLines(data)
}

func TestFirstEntry(t *testing.T) {
	tr, _ := newTestTrail(t)
	e, err := tr.Append(Input{
		Action:   "auth.login",
		Actor:    "admin",
		Resource: "session",
		Details:  map[string]any{"ip": "127.0.0.1"},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if e.Integrity != "" {
		t.Fatalf("first entry must have empty integrity, got %q", e.Integrity)
	}
	lines := readLines(t, tr.CurrentPath())
	if len(lines) != 1 {
		t.Fatalf("want exactly 1 line, got %d", len(lines))
	}
}

func TestSequentialChain(t *testing.T) {
	tr, _ := newTestTrail(t)
	for _, a := range []string{"first", "second", "third"} {
		if _, err := tr.Append(Input{Action: a, Actor: "tester"}); err != nil {
			t.Fatalf("append %s: %v", a, err)
		}
	}
	lines := readLines(t, tr.CurrentPath())
	if len(lines) != 3 {
		t.Fatalf("want 3 lines, got %d", len(lines))
	}
	for i := 1; i < len(lines); i++ {
		var e Entry
		mustUnmarshal(t, lines[i], &e)
		if e.Integrity != hashLine(lines[i-1]) {
			t.Fatalf("line %d integrity does not match sha256 of line %d", i, i-1)
		}
	}
}

func TestConcurrentAppends(t *testing.T) {
	tr, _ := newTestTrail(t)
	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := tr.Append(Input{Action: fmt.Sprintf("op-%d", i), Actor: "worker"})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	lines := readLines(t, tr.CurrentPath())
	if len(lines) != n {
		t.Fatalf("want %d lines on disk, got %d", n, len(lines))
	}
	rep, err := Verify(tr.CurrentPath())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !rep.Valid || rep.Entries != n {
		t.Fatalf("chain broken under concurrency: %+v", rep)
	}
}

func TestResetReseedsFromDisk(t *testing.T) {
	tr, _ := newTestTrail(t)
	for i := 0; i < 3; i++ {
		if _, err := tr.Append(Input{Action: fmt.Sprintf("pre-%d", i), Actor: "a"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	// Simula restart do processo.
	tr.Reset()

	for i := 0; i < 3; i++ {
		if _, err := tr.Append(Input{Action: fmt.Sprintf("post-%d", i), Actor: "a"}); err != nil {
			t.Fatalf("append after reset: %v", err)
		}
	}
	rep, err := Verify(tr.CurrentPath())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !rep.Valid || rep.Entries != 6 {
		t.Fatalf("pre+post reset must still be one valid chain: %+v", rep)
	}
}

func TestFailedWriteDoesNotAdvanceHash(t *testing.T) {
	good := t.TempDir()
	blocked := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(blocked, []byte("x"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	dir := good
	tr := New(func() string { return dir })

	if _, err := tr.Append(Input{Action: "one", Actor: "a"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	// O base dir agora aponta para um arquivo comum: MkdirAll falha.
	dir = blocked
	if _, err := tr.Append(Input{Action: "lost", Actor: "a"}); err == nil {
		t.Fatal("expected write failure")
	}

	dir = good
	if _, err := tr.Append(Input{Action: "two", Actor: "a"}); err != nil {
		t.Fatalf("append after failure: %v", err)
	}

	rep, err := Verify(tr.CurrentPath())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !rep.Valid || rep.Entries != 2 {
		t.Fatalf("failed write corrupted the chain: %+v", rep)
	}
}

func TestCorruptTailRefusesWrites(t *testing.T) {
	tr, _ := newTestTrail(t)
	path := tr.CurrentPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(path, []byte("this is not json\n"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, err := tr.Append(Input{Action: "x", Actor: "a"})
	if !errors.Is(err, ErrCorruptTail) {
		t.Fatalf("want ErrCorruptTail, got %v", err)
	}
	// Continua recusando até alguém resolver.
	if _, err := tr.Append(Input{Action: "x", Actor: "a"}); !errors.Is(err, ErrCorruptTail) {
		t.Fatalf("want ErrCorruptTail again, got %v", err)
	}

	// Operador remove o arquivo danificado; a cadeia recomeça limpa.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := tr.Append(Input{Action: "x", Actor: "a"}); err != nil {
		t.Fatalf("append after repair: %v", err)
	}
}

func TestChainContinuesAcrossMonths(t *testing.T) {
	tr, dir := newTestTrail(t)

	jan := time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC)

	tr.nowFn = func() time.Time { return jan }
	for i := 0; i < 2; i++ {
		if _, err := tr.Append(Input{Action: fmt.Sprintf("jan-%d", i), Actor: "a"}); err != nil {
			t.Fatalf("append jan: %v", err)
		}
	}
	janPath := tr.CurrentPath()

	tr.nowFn = func() time.Time { return feb }
	if _, err := tr.Append(Input{Action: "feb-0", Actor: "a"}); err != nil {
		t.Fatalf("append feb: %v", err)
	}
	febPath := tr.CurrentPath()
	if febPath == janPath {
		t.Fatal("month rollover did not change the file")
	}

	janLines := readLines(t, janPath)
	febLines := readLines(t, febPath)
	var first Entry
	mustUnmarshal(t, febLines[0], &first)
	if first.Integrity != hashLine(janLines[len(janLines)-1]) {
		t.Fatal("february must chain onto january's tail")
	}

	// Verificação por arquivo: o arquivo de fevereiro precisa da semente.
	rep, err := VerifyFrom(febPath, hashLine(janLines[len(janLines)-1]))
	if err != nil {
		t.Fatalf("verify feb: %v", err)
	}
	if !rep.Valid {
		t.Fatalf("feb file should verify with seed: %+v", rep)
	}
	if rep, err := tr.VerifyCurrent(); err != nil || !rep.Valid {
		t.Fatalf("VerifyCurrent: rep=%+v err=%v", rep, err)
	}

	// E a cadeia inteira do diretório fecha de ponta a ponta.
	reps, err := VerifyAll(dir)
	if err != nil {
		t.Fatalf("verify all: %v", err)
	}
	if len(reps) != 2 {
		t.Fatalf("want 2 monthly files, got %d", len(reps))
	}
	for _, fr := range reps {
		if !fr.Report.Valid {
			t.Fatalf("broken chain in %s: %+v", fr.Path, fr.Report)
		}
	}

	// Restart em fevereiro semeia do fim do arquivo de fevereiro.
	tr2 := New(func() string { return dir })
	tr2.nowFn = func() time.Time { return feb }
	if _, err := tr2.Append(Input{Action: "feb-1", Actor: "a"}); err != nil {
		t.Fatalf("append after restart: %v", err)
	}
	if rep, err := tr2.VerifyCurrent(); err != nil || !rep.Valid {
		t.Fatalf("chain broken after restart: rep=%+v err=%v", rep, err)
	}
}
