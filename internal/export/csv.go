package export

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/viniciushammett/go-audit-trail/internal/audit"
)

func WriteCSV(w io.Writer, entries []audit.Entry) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"timestamp", "action", "actor", "resource", "details", "integrity"})
	for _, e := range entries {
		_ = cw.Write([]string{
			e.Timestamp, e.Action, e.Actor, e.Resource, detailsJSON(e.Details), e.Integrity,
		})
	}
	cw.Flush()
	return cw.Error()
}

func detailsJSON(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}
	b, _ := json.Marshal(m)
	return string(b)
}
