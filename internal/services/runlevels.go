package services

import (
	"strings"

	"grimm.is/sockd/internal/errors"
)

// LevelS is the single-user bootstrap runlevel, written "S".
const LevelS = 10

// DefaultRunlevels is [2345].
const DefaultRunlevels Runlevels = 1<<2 | 1<<3 | 1<<4 | 1<<5

// Runlevels is a bitmask of runlevels 0-9 and S.
type Runlevels uint16

// ParseRunlevels parses "[2345]", "[S12]" or "2345". Whitespace is ignored;
// an empty set is an error.
func ParseRunlevels(s string) (Runlevels, error) {
	body := strings.TrimSpace(s)
	if strings.HasPrefix(body, "[") != strings.HasSuffix(body, "]") {
		return 0, errors.Errorf(errors.KindInvalid, "unbalanced runlevel brackets in %q", s)
	}
	body = strings.TrimSuffix(strings.TrimPrefix(body, "["), "]")

	var r Runlevels
	for _, c := range body {
		switch {
		case c >= '0' && c <= '9':
			r |= 1 << (c - '0')
		case c == 'S' || c == 's':
			r |= 1 << LevelS
		case c == ' ' || c == '\t':
		default:
			return 0, errors.Errorf(errors.KindInvalid, "invalid runlevel %q in %q", c, s)
		}
	}
	if r == 0 {
		return 0, errors.Errorf(errors.KindInvalid, "no runlevels in %q", s)
	}
	return r, nil
}

// Has reports whether level is in the set.
func (r Runlevels) Has(level int) bool {
	if level < 0 || level > LevelS {
		return false
	}
	return r&(1<<level) != 0
}

func (r Runlevels) String() string {
	var b strings.Builder
	b.WriteByte('[')
	if r.Has(LevelS) {
		b.WriteByte('S')
	}
	for i := 0; i <= 9; i++ {
		if r.Has(i) {
			b.WriteByte(byte('0' + i))
		}
	}
	b.WriteByte(']')
	return b.String()
}
