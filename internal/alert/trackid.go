package alert

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const (
	trackingPrefix = "EMERGENCY"
	codeAlphabet   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	suffixLen      = 5
)

// NewTrackingCode produces a shareable alert identifier:
// EMERGENCY-<millis in base36>-<5 random base36 chars>. The timestamp part
// distinguishes calls across milliseconds, the random suffix covers calls
// within one. The store's unique index is the real uniqueness guarantee; a
// clash surfaces as a conflict, not a silent overwrite.
func NewTrackingCode() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	suffix := make([]byte, suffixLen)
	for i := range suffix {
		suffix[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return trackingPrefix + "-" + ts + "-" + string(suffix)
}
