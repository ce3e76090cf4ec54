package percolate

import (
	"math"
	"strconv"
	"strings"
)

// splitTwo splits "a,b" into its two comma-separated parts.
func splitTwo(s string) (string, string, bool) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// splitN splits s into exactly n comma-separated parts, or returns nil.
func splitN(s string, n int) []string {
	parts := strings.SplitN(s, ",", n)
	if len(parts) != n {
		return nil
	}
	for _, p := range parts {
		if p == "" {
			return nil
		}
	}
	return parts
}

// parseFloatStrict parses a float, rejecting NaN/Inf (a document
// field containing "NaN" must never parse as a coordinate).
func parseFloatStrict(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseUintStrict parses a non-negative base-10 integer with no
// decimal point, sign, or separators.
func parseUintStrict(s string) (uint64, bool) {
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return u, true
}
