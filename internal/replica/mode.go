package replica

import (
	"regexp"
	"strconv"

	"homebook/internal/apperr"
)

// Mode is the requested replication window. Window 0 means "all".
// The window is currently informational only; it is parsed, echoed
// and logged but does not restrict the merge.
type Mode struct {
	Window int
	// Days is set when the window counts days instead of rows.
	Days bool
}

var modeRe = regexp.MustCompile(`^read(?:_(\d+)(d?))?$`)

// ParseMode parses the grammar read(_<N>[d])?.
func ParseMode(s string) (Mode, error) {
	m := modeRe.FindStringSubmatch(s)
	if m == nil {
		return Mode{}, apperr.Service("parse mode", apperr.T("replica.mode.invalid", s))
	}
	if m[1] == "" {
		return Mode{}, nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Mode{}, apperr.Service("parse mode", apperr.T("replica.mode.invalid", s))
	}
	return Mode{Window: n, Days: m[2] == "d"}, nil
}
