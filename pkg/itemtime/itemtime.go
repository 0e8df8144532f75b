// Package itemtime parses and canonicalizes Yupdates item times.
//
// An item time is a unix epoch millisecond (the base) with an optional
// disambiguation suffix (the slot). The service hands them out as
// "1661564013555.00003" and accepts looser forms like "1234" or
// "123456.789". Range queries compare item times as strings, so every
// outgoing bound is rendered in the fixed-width canonical form:
//
//	<13-digit zero-padded base>.<5-digit zero-padded slot>
//
// Canonical strings sort lexicographically in the same order as the
// times they represent.
package itemtime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// MaxBase is the largest accepted millisecond base.
	MaxBase uint64 = 9_999_999_999_999

	// MaxSlot is the largest accepted slot suffix.
	MaxSlot uint64 = 99_999
)

// ErrInvalid is wrapped by every parse failure.
var ErrInvalid = errors.New("invalid item time")

// ItemTime is a parsed item time. The zero value is "0000000000000.00000".
type ItemTime struct {
	Base uint64
	Slot uint64
}

// Parse validates an item time string and returns its parsed form.
// Valid inputs: "1234", "1661564013555", "1661564013555.00003", "123456.789".
func Parse(s string) (ItemTime, error) {
	parts := strings.Split(s, ".")

	var baseStr, slotStr string
	switch len(parts) {
	case 1:
		baseStr, slotStr = s, "0"
	case 2:
		baseStr, slotStr = parts[0], parts[1]
	default:
		return ItemTime{}, fmt.Errorf("%w: '%s'", ErrInvalid, s)
	}

	base, err := parseBounded(baseStr, "base ms", MaxBase)
	if err != nil {
		return ItemTime{}, err
	}
	slot, err := parseBounded(slotStr, "suffix", MaxSlot)
	if err != nil {
		return ItemTime{}, err
	}

	return ItemTime{Base: base, Slot: slot}, nil
}

// FromMs builds an item time from an integer millisecond timestamp (slot 0).
func FromMs(ms uint64) (ItemTime, error) {
	if ms > MaxBase {
		return ItemTime{}, fmt.Errorf("%w: base ms may not be larger than %d: '%d'", ErrInvalid, MaxBase, ms)
	}
	return ItemTime{Base: ms}, nil
}

// Normalize accepts any valid item time string and returns its canonical form.
func Normalize(s string) (string, error) {
	it, err := Parse(s)
	if err != nil {
		return "", err
	}
	return it.String(), nil
}

// NormalizeMs is Normalize for integer millisecond timestamps.
func NormalizeMs(ms uint64) (string, error) {
	it, err := FromMs(ms)
	if err != nil {
		return "", err
	}
	return it.String(), nil
}

// String renders the canonical, fixed-width form.
func (t ItemTime) String() string {
	return fmt.Sprintf("%013d.%05d", t.Base, t.Slot)
}

// Compare returns -1, 0 or +1 depending on whether a is before, equal to, or after b.
func Compare(a, b ItemTime) int {
	switch {
	case a.Base < b.Base:
		return -1
	case a.Base > b.Base:
		return 1
	case a.Slot < b.Slot:
		return -1
	case a.Slot > b.Slot:
		return 1
	default:
		return 0
	}
}

// Before reports whether t is strictly earlier than u.
func (t ItemTime) Before(u ItemTime) bool {
	return Compare(t, u) < 0
}

// After reports whether t is strictly later than u.
func (t ItemTime) After(u ItemTime) bool {
	return Compare(t, u) > 0
}

// parseBounded parses an unsigned decimal made of ASCII digits only.
func parseBounded(s, name string, upper uint64) (uint64, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, fmt.Errorf("%w: invalid u64: '%s'", ErrInvalid, s)
	}

	parsed, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid u64: '%s'", ErrInvalid, s)
	}

	if parsed > upper {
		return 0, fmt.Errorf("%w: %s may not be larger than %d: '%d'", ErrInvalid, name, upper, parsed)
	}

	return parsed, nil
}
