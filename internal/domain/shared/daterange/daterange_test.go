package daterange

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewNormalizesAndValidates(t *testing.T) {
	start := time.Date(2026, 9, 10, 14, 30, 0, 0, time.FixedZone("CST", -6*3600))
	end := time.Date(2026, 9, 12, 2, 0, 0, 0, time.UTC)
	r, err := New(start, end)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !r.Start.Equal(day(2026, 9, 10)) {
		t.Errorf("start not normalized to UTC midnight: %v", r.Start)
	}
	if !r.End.Equal(day(2026, 9, 12)) {
		t.Errorf("end not normalized to UTC midnight: %v", r.End)
	}

	if _, err := New(day(2026, 9, 12), day(2026, 9, 10)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("reversed range: expected ErrInvalidRange, got %v", err)
	}
}

func TestDaysInclusive(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"same day", day(2026, 9, 10), day(2026, 9, 10), 1},
		{"weekend", day(2026, 9, 11), day(2026, 9, 13), 3},
		{"full month block", day(2026, 9, 1), day(2026, 9, 28), 28},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DateRange{Start: tt.start, End: tt.end}
			if got := r.Days(); got != tt.want {
				t.Errorf("Days() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestContainsDay(t *testing.T) {
	r := DateRange{Start: day(2026, 9, 10), End: day(2026, 9, 12)}
	if !r.ContainsDay(day(2026, 9, 10)) || !r.ContainsDay(day(2026, 9, 12)) {
		t.Error("bounds should be inclusive")
	}
	if !r.ContainsDay(time.Date(2026, 9, 11, 23, 59, 0, 0, time.UTC)) {
		t.Error("timestamps inside a contained day should match")
	}
	if r.ContainsDay(day(2026, 9, 13)) {
		t.Error("day after end should not match")
	}
}

func TestOverlaps(t *testing.T) {
	a := DateRange{Start: day(2026, 9, 10), End: day(2026, 9, 12)}
	tests := []struct {
		name  string
		other DateRange
		want  bool
	}{
		{"identical", a, true},
		{"shares one day", DateRange{Start: day(2026, 9, 12), End: day(2026, 9, 14)}, true},
		{"adjacent disjoint", DateRange{Start: day(2026, 9, 13), End: day(2026, 9, 14)}, false},
		{"contained", DateRange{Start: day(2026, 9, 11), End: day(2026, 9, 11)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEachDayOrder(t *testing.T) {
	r := DateRange{Start: day(2026, 9, 10), End: day(2026, 9, 12)}
	var seen []time.Time
	r.EachDay(func(d time.Time) { seen = append(seen, d) })
	if len(seen) != 3 {
		t.Fatalf("visited %d days, want 3", len(seen))
	}
	for i := 1; i < len(seen); i++ {
		if !seen[i].After(seen[i-1]) {
			t.Errorf("days out of order: %v then %v", seen[i-1], seen[i])
		}
	}
}

func TestDaysBetween(t *testing.T) {
	if got := DaysBetween(day(2026, 9, 10), day(2026, 9, 13)); got != 3 {
		t.Errorf("DaysBetween forward = %d, want 3", got)
	}
	if got := DaysBetween(day(2026, 9, 13), day(2026, 9, 10)); got != -3 {
		t.Errorf("DaysBetween backward = %d, want -3", got)
	}
}
