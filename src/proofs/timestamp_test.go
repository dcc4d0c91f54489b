package proofs

import "testing"

func TestParseEmailTimestampMs(t *testing.T) {
	cases := []struct {
		value string
		want  uint64
	}{
		{"Mon, 01 Jan 2024 00:00:00 +0000", 1704067200000},
		{"Mon, 1 Jan 2024 00:00:00 +0000", 1704067200000},
		{"1 Jan 2024 00:00:00 +0000", 1704067200000},
		{"Mon, 01 Jan 2024 01:00:00 +0100", 1704067200000},
		{"Thu, 15 Aug 2024 10:30:45 +0000 (UTC)", 1723717845000},
		{"  Mon, 01 Jan 2024 00:00:00 +0000  ", 1704067200000},
	}
	for _, tc := range cases {
		got := ParseEmailTimestampMs(tc.value)
		if got == nil {
			t.Errorf("%q: got nil, want %d", tc.value, tc.want)
			continue
		}
		if *got != tc.want {
			t.Errorf("%q: got %d, want %d", tc.value, *got, tc.want)
		}
	}
}

func TestParseEmailTimestampMsRejectsGarbage(t *testing.T) {
	cases := []string{
		"",
		"not a date",
		"2024-01-01T00:00:00Z",
		"Mon, 01 Jan 1969 00:00:00 +0000",
	}
	for _, value := range cases {
		if got := ParseEmailTimestampMs(value); got != nil {
			t.Errorf("%q: got %d, want nil", value, *got)
		}
	}
}
