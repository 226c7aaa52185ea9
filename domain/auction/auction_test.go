package auction

import (
	"regexp"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestStatusAt(t *testing.T) {
	req := require.New(t)

	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	a := &Auction{StartTime: start, EndTime: end}

	cases := []struct {
		name   string
		now    time.Time
		closed bool
		want   Status
	}{
		{"before window", start.Add(-time.Minute), false, StatusNotStarted},
		{"at start", start, false, StatusOngoing},
		{"mid window", start.Add(30 * time.Minute), false, StatusOngoing},
		{"at end", end, false, StatusClosed},
		{"after end", end.Add(time.Second), false, StatusClosed},
		{"flag wins before window", start.Add(-time.Minute), true, StatusClosed},
		{"flag wins mid window", start.Add(time.Minute), true, StatusClosed},
	}

	for _, cs := range cases {
		a.Closed = cs.closed
		req.Equal(cs.want, a.StatusAt(cs.now), cs.name)
	}
}

func TestDueForClose(t *testing.T) {
	req := require.New(t)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	elapsed := &Auction{Id: "a", StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Hour)}
	ongoing := &Auction{Id: "b", StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour)}
	pending := &Auction{Id: "c", StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour)}
	flagged := &Auction{Id: "d", StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Hour), Closed: true}

	due := DueForClose(now, []*Auction{elapsed, ongoing, pending, flagged})

	req.Len(due, 1)
	req.Equal(elapsed.Id, due[0].Id)
}

func TestGenerateSku(t *testing.T) {
	req := require.New(t)

	now := time.Unix(1700000000, 0)
	sku := GenerateSku("camera", now)

	req.Regexp(regexp.MustCompile(`^CA-1700000000-[A-Z0-9]{3}$`), sku)

	// short names keep what they have
	sku = GenerateSku("x", now)
	req.Regexp(regexp.MustCompile(`^X-1700000000-[A-Z0-9]{3}$`), sku)

	// multibyte first letters survive whole
	sku = GenerateSku("Ämparo", now)
	req.True(utf8.ValidString(sku))
	req.Regexp(regexp.MustCompile(`^ÄM-1700000000-[A-Z0-9]{3}$`), sku)
}
