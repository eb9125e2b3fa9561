package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/viniciushammett/go-audit-trail/internal/audit"
)

// Demonstra a detecção de adulteração: grava uma cadeia, corrompe uma
// entrada e mostra onde a verificação acusa a quebra.
func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: tamper-tester <entries> <tamper-index>")
		os.Exit(2)
	}
	n, err := strconv.Atoi(os.Args[1])
	if err != nil || n < 1 {
		panic("entries must be a positive number")
	}
	idx, err := strconv.Atoi(os.Args[2])
	if err != nil || idx < 0 || idx >= n {
		panic("tamper-index out of range")
	}

	dir, err := os.MkdirTemp("", "tamper-tester")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	trail := audit.New(func() string { return dir })
	for i := 0; i < n; i++ {
		if _, err := trail.Append(audit.Input{
			Action: fmt.Sprintf("demo.entry-%d", i),
			Actor:  "tamper-tester",
		}); err != nil {
			panic(err)
		}
	}
	path := trail.CurrentPath()

	before, err := audit.Verify(path)
	if err != nil {
		panic(err)
	}
	fmt.Printf("✅ before tamper: valid=%v entries=%d\n", before.Valid, before.Entries)

	// adultera o conteúdo da entrada idx sem recalcular hashes
	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	lines := bytes.Split(bytes.TrimSpace(data), []byte{'\n'})
	var e audit.Entry
	if err := json.Unmarshal(lines[idx], &e); err != nil {
		panic(err)
	}
	e.Actor = "intruder"
	lines[idx], _ = json.Marshal(e)
	out := append(bytes.Join(lines, []byte{'\n'}), '\n')
	if err := os.WriteFile(path, out, 0o600); err != nil {
		panic(err)
	}

	after, err := audit.Verify(path)
	if err != nil {
		panic(err)
	}
	if after.Valid {
		fmt.Printf("⚠️  tamper at %d NOT detected (last entry has no successor to catch it)\n", idx)
		return
	}
	fmt.Printf("❌ after tamper at %d: first broken at %d\n", idx, *after.FirstBroken)
}
