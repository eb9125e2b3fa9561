package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/viniciushammett/go-audit-trail/internal/audit"
)

// auditcheck verifica a cadeia offline: um arquivo isolado ou o diretório
// inteiro (a cadeia continua entre arquivos mensais).
func main() {
	dir := flag.String("dir", "", "data dir: verify every monthly file as one chain")
	file := flag.String("file", "", "verify a single log file (chain anchored at \"\")")
	flag.Parse()

	switch {
	case *dir != "":
		reps, err := audit.VerifyAll(*dir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "verify:", err)
			os.Exit(1)
		}
		if len(reps) == 0 {
			fmt.Println("no audit files found (empty chain is valid)")
			return
		}
		broken := false
		for _, fr := range reps {
			if fr.Report.Valid {
				fmt.Printf("✅ %s (%d entries)\n", fr.Path, fr.Report.Entries)
			} else {
				broken = true
				fmt.Printf("❌ %s (%d entries, first broken at %d)\n",
					fr.Path, fr.Report.Entries, *fr.Report.FirstBroken)
			}
		}
		if broken {
			os.Exit(1)
		}
	case *file != "":
		rep, err := audit.Verify(*file)
		if err != nil {
			fmt.Fprintln(os.Stderr, "verify:", err)
			os.Exit(1)
		}
		if !rep.Valid {
			fmt.Printf("❌ %s (%d entries, first broken at %d)\n", *file, rep.Entries, *rep.FirstBroken)
			os.Exit(1)
		}
		fmt.Printf("✅ %s (%d entries)\n", *file, rep.Entries)
	default:
		fmt.Fprintln(os.Stderr, "usage: auditcheck -dir <dataDir> | -file <audit-YYYY-MM.log>")
		os.Exit(2)
	}
}
