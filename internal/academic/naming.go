package academic

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedGroupName is returned when a stored group name does not follow
// the {short}-{index}-{YY} layout.
var ErrMalformedGroupName = errors.New("group name is not in short-index-year form")

// GroupName formats a group name from its parts.
func GroupName(shortName string, index, year int) string {
	return fmt.Sprintf("%s-%d-%s", shortName, index, YearSuffix(year))
}

// YearSuffix returns the last two digits of year.
func YearSuffix(year int) string {
	s := fmt.Sprintf("%02d", year)
	return s[len(s)-2:]
}

// NextGroupName picks the first free name for a new group of the faculty in
// year. existing is the number of the faculty's groups already enrolled that
// year; taken reports whether a name is used by another group.
func NextGroupName(shortName string, year, existing int, taken func(name string) (bool, error)) (string, error) {
	index := existing + 1
	for {
		name := GroupName(shortName, index, year)
		used, err := taken(name)
		if err != nil {
			return "", fmt.Errorf("check group name %q: %w", name, err)
		}
		if !used {
			return name, nil
		}
		index++
	}
}

// RenameGroup substitutes the faculty short-name segment of an existing
// group name.
func RenameGroup(name, newShortName string) (string, error) {
	parts := strings.Split(name, "-")
	if len(parts) != 3 {
		return "", fmt.Errorf("%q: %w", name, ErrMalformedGroupName)
	}
	return fmt.Sprintf("%s-%s-%s", newShortName, parts[1], parts[2]), nil
}
