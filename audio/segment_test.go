package audio

import (
	"testing"
	"time"
)

func TestSegmentScenario(t *testing.T) {
	got, err := Segment(100*time.Second, 45*time.Second)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	want := []Window{
		{Index: 0, Start: 0, End: 45 * time.Second},
		{Index: 1, Start: 45 * time.Second, End: 90 * time.Second},
		{Index: 2, Start: 90 * time.Second, End: 100 * time.Second},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d windows, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("window %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSegmentPartitionsTrack(t *testing.T) {
	tests := []struct {
		name  string
		total time.Duration
		chunk time.Duration
		count int
	}{
		{"exact multiple", 90 * time.Second, 45 * time.Second, 2},
		{"shorter than chunk", 10 * time.Second, 45 * time.Second, 1},
		{"one millisecond remainder", 45*time.Second + time.Millisecond, 45 * time.Second, 2},
		{"many chunks", 3601 * time.Second, 45 * time.Second, 81},
		{"single ms", time.Millisecond, time.Second, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			windows, err := Segment(tc.total, tc.chunk)
			if err != nil {
				t.Fatalf("Segment: %v", err)
			}
			if len(windows) != tc.count {
				t.Fatalf("got %d windows, want %d", len(windows), tc.count)
			}
			if windows[0].Start != 0 {
				t.Errorf("first window starts at %s", windows[0].Start)
			}
			if last := windows[len(windows)-1]; last.End != tc.total {
				t.Errorf("last window ends at %s, want %s", last.End, tc.total)
			}
			for i, w := range windows {
				if w.Index != i {
					t.Errorf("window %d has index %d", i, w.Index)
				}
				if w.Start >= w.End {
					t.Errorf("window %d is empty: %v", i, w)
				}
				if w.Duration() > tc.chunk {
					t.Errorf("window %d longer than chunk: %s", i, w.Duration())
				}
				if i > 0 && windows[i-1].End != w.Start {
					t.Errorf("gap between %v and %v", windows[i-1], w)
				}
			}
		})
	}
}

func TestSegmentEmptyTrack(t *testing.T) {
	windows, err := Segment(0, 45*time.Second)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(windows) != 0 {
		t.Fatalf("expected no windows, got %v", windows)
	}
}

func TestSegmentRejectsBadInput(t *testing.T) {
	if _, err := Segment(time.Second, 0); err == nil {
		t.Error("expected error for zero chunk duration")
	}
	if _, err := Segment(-time.Second, time.Second); err == nil {
		t.Error("expected error for negative total")
	}
}
