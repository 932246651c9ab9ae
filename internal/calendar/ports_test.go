package calendar

import (
	"errors"
	"testing"

	"fincal/internal/core"
)

func strPtr(s string) *string { return &s }

func TestParseEntry(t *testing.T) {
	cases := []struct {
		name string
		raw  RawEntry
		want Entry
		ok   bool
	}{
		{
			name: "all-day",
			raw:  RawEntry{ID: "1", Summary: strPtr("Meeting"), Description: strPtr("notes"), Start: &RawTime{Date: "2024-03-01"}},
			want: Entry{ID: "1", Summary: "Meeting", Description: "notes", Date: core.NewDate(2024, 3, 1)},
			ok:   true,
		},
		{
			name: "timed keeps local date",
			raw:  RawEntry{ID: "2", Summary: strPtr("Call"), Start: &RawTime{DateTime: "2024-03-01T23:30:00-06:00"}},
			want: Entry{ID: "2", Summary: "Call", Date: core.NewDate(2024, 3, 1)},
			ok:   true,
		},
		{name: "no summary", raw: RawEntry{ID: "3", Start: &RawTime{Date: "2024-03-01"}}},
		{name: "no start", raw: RawEntry{ID: "4", Summary: strPtr("x")}},
		{name: "empty start", raw: RawEntry{ID: "5", Summary: strPtr("x"), Start: &RawTime{}}},
		{name: "bad date", raw: RawEntry{ID: "6", Summary: strPtr("x"), Start: &RawTime{Date: "yesterday"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseEntry(tc.raw)
			if !tc.ok {
				if !errors.Is(err, ErrMalformedEntry) {
					t.Fatalf("expected ErrMalformedEntry, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}
