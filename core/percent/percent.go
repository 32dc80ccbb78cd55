// Package percent implements a simple type for percentage values, as used
// for the widths of tables.
package percent

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Percent is a percentage between 0 and 100.
type Percent uint8

// FromInt clamps n to a percentage.
func FromInt(n int) Percent {
	switch {
	case n <= 0:
		return Percent(0)
	case n >= 100:
		return Percent(100)
	}
	return Percent(n)
}

// FromFloat rounds and clamps f to a percentage.
func FromFloat(f float64) Percent {
	switch {
	case f <= 0 || math.IsNaN(f) || math.IsInf(f, -1):
		return Percent(0)
	case f >= 100 || math.IsInf(f, 1):
		return Percent(100)
	}
	return Percent(math.Round(f))
}

// FromString parses a number with an optional '%' suffix, e.g. "50%" or
// "33.3". Values outside of 0…100 are clamped.
func FromString(s string) (Percent, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, fmt.Errorf("not a percentage: %q", s)
	}
	return FromFloat(f), nil
}

func (p Percent) String() string {
	return strconv.Itoa(int(p)) + "%"
}
