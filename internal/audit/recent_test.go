package audit

import (
	"fmt"
	"testing"
	"time"
)

func TestReadRecentNewestFirst(t *testing.T) {
	tr, _ := newTestTrail(t)
	for i := 0; i < 10; i++ {
		if _, err := tr.Append(Input{Action: fmt.Sprintf("entry-%d", i), Actor: "tester"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := tr.ReadRecent(3)
	if err != nil {
		t.Fatalf("read recent: %v", err)
	}
	want := []string{"entry-9", "entry-8", "entry-7"}
	if len(got) != len(want) {
		t.Fatalf("want %d entries, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Action != w {
			t.Fatalf("position %d: want %s got %s", i, w, got[i].Action)
		}
	}
}

func TestReadRecentDefaultLimit(t *testing.T) {
	tr, _ := newTestTrail(t)
	for i := 0; i < 10; i++ {
		if _, err := tr.Append(Input{Action: fmt.Sprintf("entry-%d", i), Actor: "tester"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	got, err := tr.ReadRecent(0)
	if err != nil {
		t.Fatalf("read recent: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("limit<=0 should return up to the default, got %d", len(got))
	}
}

func TestReadRecentEmpty(t *testing.T) {
	tr, _ := newTestTrail(t)
	got, err := tr.ReadRecent(5)
	if err != nil {
		t.Fatalf("missing files are empty, not an error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want empty result, got %d", len(got))
	}
}

func TestReadRecentCrossesMonths(t *testing.T) {
	tr, _ := newTestTrail(t)

	tr.nowFn = func() time.Time { return time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC) }
	for i := 0; i < 2; i++ {
		if _, err := tr.Append(Input{Action: fmt.Sprintf("jan-%d", i), Actor: "a"}); err != nil {
			t.Fatalf("append jan: %v", err)
		}
	}
	tr.nowFn = func() time.Time { return time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC) }
	if _, err := tr.Append(Input{Action: "feb-0", Actor: "a"}); err != nil {
		t.Fatalf("append feb: %v", err)
	}

	got, err := tr.ReadRecent(3)
	if err != nil {
		t.Fatalf("read recent: %v", err)
	}
	want := []string{"feb-0", "jan-1", "jan-0"}
	for i, w := range want {
		if got[i].Action != w {
			t.Fatalf("position %d: want %s got %s", i, w, got[i].Action)
		}
	}
}
