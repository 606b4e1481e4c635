// Package utils collects small string/slice helpers shared by the
// reconstruction and CLI packages — the parts of the teacher's own
// internal/utils that have nothing to do with downloading or unpacking IPSW
// archives, which this tool never does.
package utils

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
)

var normalPadding = cli.Default.Padding

// Indent runs f with the apex/log CLI handler's padding scaled to level,
// restoring it afterward, so messages logged through f are nested under
// their parent line without hand-formatting every message.
func Indent(f func(s string), level int) func(string) {
	return func(s string) {
		cli.Default.Padding = normalPadding * level
		f(s)
		cli.Default.Padding = normalPadding
	}
}

// Pad creates left padding for printf members.
func Pad(length int) string {
	if length > 0 {
		return strings.Repeat(" ", length)
	}
	return " "
}

// StrSliceContains returns true if any item in slice is a case-insensitive
// substring of item.
func StrSliceContains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.Contains(strings.ToLower(item), strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// StrSliceHas returns true if slice has an exact case-insensitive match for
// item.
func StrSliceHas(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

// RemoveStrFromSlice removes the first occurrence of r from s.
func RemoveStrFromSlice(s []string, r string) []string {
	for i, v := range s {
		if v == r {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// Unique returns a slice with only the non-empty, de-duplicated strings of
// s, preserving first-seen order.
func Unique(s []string) []string {
	seen := make(map[string]bool, len(s))
	var us []string
	for _, elem := range s {
		if len(elem) == 0 || seen[elem] {
			continue
		}
		seen[elem] = true
		us = append(us, elem)
	}
	return us
}

// ConvertStrToInt parses a decimal or 0x-prefixed hexadecimal string into a
// uint64.
func ConvertStrToInt(intStr string) (uint64, error) {
	intStr = strings.ToLower(intStr)

	if strings.ContainsAny(intStr, "xabcdef") {
		intStr = strings.ReplaceAll(intStr, "0x", "")
		intStr = strings.ReplaceAll(intStr, "x", "")
		if out, err := strconv.ParseUint(intStr, 16, 64); err == nil {
			return out, err
		}
		log.Warn("assuming given integer is in decimal")
	}
	return strconv.ParseUint(intStr, 10, 64)
}

// IsASCII reports whether every rune in s is printable ASCII. Used to sanity
// check a demangled name before trusting it — a corrupted or truncated
// STABS/RTTI symbol can demangle to garbage that is technically a valid Go
// string but clearly not a C++ identifier.
func IsASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
