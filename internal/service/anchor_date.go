package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
)

var anchorParser = newAnchorParser()

func newAnchorParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseAnchorDate accepts an ISO date or a relative expression such as
// "next monday" or "tomorrow", resolved against now.
func ParseAnchorDate(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrInvalidDate, "anchor date is required")
	}
	if parsed, err := ParseDate(raw); err == nil {
		return parsed, nil
	}
	result, err := anchorParser.Parse(strings.ToLower(raw), now)
	if err != nil || result == nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrInvalidDate, fmt.Sprintf("could not interpret anchor date %q", raw))
	}
	return NormalizeDate(result.Time), nil
}
