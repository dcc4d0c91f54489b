package proofs

import (
	"strings"
	"time"
)

// emailDateLayouts covers the RFC 5322 Date forms seen in practice, with and
// without the optional day-of-week and zero-padded day.
var emailDateLayouts = []string{
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04 -0700",
	"2 Jan 2006 15:04 -0700",
}

// ParseEmailTimestampMs parses an email Date header value into unix
// milliseconds. Returns nil when the value does not parse or predates the
// unix epoch; a bad timestamp never fails verification, the caller just
// reports it as absent.
func ParseEmailTimestampMs(value string) *uint64 {
	trimmed := strings.TrimSpace(value)
	// Strip an RFC 5322 trailing comment such as "(UTC)".
	if i := strings.IndexByte(trimmed, '('); i >= 0 {
		trimmed = strings.TrimSpace(trimmed[:i])
	}
	for _, layout := range emailDateLayouts {
		t, err := time.Parse(layout, trimmed)
		if err != nil {
			continue
		}
		ms := t.UnixMilli()
		if ms < 0 {
			return nil
		}
		u := uint64(ms)
		return &u
	}
	return nil
}
