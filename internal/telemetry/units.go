package telemetry

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ferroscope/ferro/internal/errors"
)

// leadingNumber matches the numeric prefix of a size string, e.g. "3.20" in "3.20 GiB".
var leadingNumber = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// ParseSize converts a memory size such as "512 MiB" into GiB.
//
// Units are matched by substring in the order GiB, MiB, TiB. A string with
// none of them returns its bare numeric value. A string with no numeric
// prefix fails with a PARSE error.
func ParseSize(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	num := leadingNumber.FindString(trimmed)
	if num == "" {
		return 0, errors.New(errors.ErrParse, fmt.Sprintf("no numeric value in %q", s), "")
	}
	value, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsInf(value, 0) {
		return 0, errors.WrapWithCode(err, errors.ErrParse, fmt.Sprintf("numeric value out of range in %q", s), "")
	}

	switch {
	case strings.Contains(s, "GiB"):
		return value, nil
	case strings.Contains(s, "MiB"):
		return value / 1024, nil
	case strings.Contains(s, "TiB"):
		return value * 1024, nil
	}
	return value, nil
}

// sizeOrZero is ParseSize with the neutral default for unparseable input.
func sizeOrZero(s string) float64 {
	v, err := ParseSize(s)
	if err != nil {
		return 0
	}
	return v
}
