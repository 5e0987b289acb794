package timeline

import (
	"fmt"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestReconstruct_SameDay(t *testing.T) {
	base := date(2024, 10, 2)
	got, err := Reconstruct([]string{"14:28:34", "14:29:07", "15:00:00"}, base)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	want := []time.Time{
		time.Date(2024, 10, 2, 14, 28, 34, 0, time.UTC),
		time.Date(2024, 10, 2, 14, 29, 7, 0, time.UTC),
		time.Date(2024, 10, 2, 15, 0, 0, 0, time.UTC),
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("entry %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestReconstruct_MidnightRollover(t *testing.T) {
	base := date(2024, 1, 1)
	got, err := Reconstruct([]string{"23:58:00", "23:59:30", "00:00:10", "00:01:00"}, base)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	want := []time.Time{
		time.Date(2024, 1, 1, 23, 58, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 23, 59, 30, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 10, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 1, 0, 0, time.UTC),
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("entry %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestReconstruct_MultipleRollovers(t *testing.T) {
	base := date(2024, 3, 30)
	got, err := Reconstruct([]string{"22:00:00", "02:00:00", "23:30:00", "01:00:00"}, base)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	// Two midnight crossings: days 30 -> 31 -> 1 (April).
	want := []time.Time{
		time.Date(2024, 3, 30, 22, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 2, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 23, 30, 0, 0, time.UTC),
		time.Date(2024, 4, 1, 1, 0, 0, 0, time.UTC),
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("entry %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestReconstruct_Empty(t *testing.T) {
	got, err := Reconstruct(nil, date(2024, 1, 1))
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty output, got %d entries", len(got))
	}
}

func TestReconstruct_BadToken(t *testing.T) {
	_, err := Reconstruct([]string{"12:00:00", "25:99:00"}, date(2024, 1, 1))
	if err == nil {
		t.Fatal("expected error for invalid time token")
	}
}

func TestReconstruct_OutputNonDecreasing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 200).Draw(t, "n")
		clocks := make([]string, n)
		for i := range clocks {
			h := rapid.IntRange(0, 23).Draw(t, fmt.Sprintf("h%d", i))
			m := rapid.IntRange(0, 59).Draw(t, fmt.Sprintf("m%d", i))
			s := rapid.IntRange(0, 59).Draw(t, fmt.Sprintf("s%d", i))
			clocks[i] = fmt.Sprintf("%02d:%02d:%02d", h, m, s)
		}

		out, err := Reconstruct(clocks, date(2024, 6, 15))
		if err != nil {
			t.Fatalf("Reconstruct failed: %v", err)
		}
		if len(out) != n {
			t.Fatalf("length changed: got %d, want %d", len(out), n)
		}
		for i := 1; i < len(out); i++ {
			if out[i].Before(out[i-1]) {
				t.Fatalf("output decreases at %d: %v < %v", i, out[i], out[i-1])
			}
		}
	})
}
