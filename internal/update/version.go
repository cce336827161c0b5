package update

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Version represents a parsed semantic version.
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
	Raw        string
}

// versionRegex matches major[.minor[.patch]][-prerelease][+build] once any
// leading non-numeric prefix has been removed.
var versionRegex = regexp.MustCompile(`^(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:-([0-9A-Za-z.-]+))?(?:\+[0-9A-Za-z.-]+)?$`)

// ParseVersion parses a version string.
// Any leading non-numeric prefix is ignored, so "v1.2.3" and "release-1.2.3"
// both parse as 1.2.3. Missing minor or patch components read as zero.
// Returns an error if the version string is invalid.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("empty version string")
	}

	numeric := strings.TrimLeftFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	matches := versionRegex.FindStringSubmatch(numeric)
	if matches == nil {
		return Version{}, fmt.Errorf("invalid version format: %s", s)
	}

	major, err := strconv.Atoi(matches[1])
	if err != nil {
		return Version{}, fmt.Errorf("invalid major version in %s: %w", s, err)
	}
	minor, err := atoiOrZero(matches[2])
	if err != nil {
		return Version{}, fmt.Errorf("invalid minor version in %s: %w", s, err)
	}
	patch, err := atoiOrZero(matches[3])
	if err != nil {
		return Version{}, fmt.Errorf("invalid patch version in %s: %w", s, err)
	}

	return Version{
		Major:      major,
		Minor:      minor,
		Patch:      patch,
		Prerelease: matches[4],
		Raw:        s,
	}, nil
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// String returns the version as a string with 'v' prefix.
func (v Version) String() string {
	return "v" + v.Bare()
}

// Bare returns the version without a prefix, e.g. "1.2.3" or "1.2.3-beta.1".
func (v Version) Bare() string {
	base := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		return base + "-" + v.Prerelease
	}
	return base
}

// Compare compares two versions.
// Returns:
//
//	-1 if v < other
//	 0 if v == other
//	 1 if v > other
//
// Prerelease versions are considered less than release versions.
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		return compareInt(v.Major, other.Major)
	}
	if v.Minor != other.Minor {
		return compareInt(v.Minor, other.Minor)
	}
	if v.Patch != other.Patch {
		return compareInt(v.Patch, other.Patch)
	}
	return comparePrerelease(v.Prerelease, other.Prerelease)
}

// LessThan returns true if v < other.
func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

// GreaterThan returns true if v > other.
func (v Version) GreaterThan(other Version) bool {
	return v.Compare(other) > 0
}

// Equal returns true if v == other.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

func compareInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// comparePrerelease orders dot-separated identifiers: numeric identifiers
// compare numerically and sort before alphanumeric ones, and a shorter list
// sorts first when all shared identifiers are equal ("beta" < "beta.1").
func comparePrerelease(a, b string) int {
	// No prerelease is greater than any prerelease
	if a == "" && b == "" {
		return 0
	}
	if a == "" {
		return 1
	}
	if b == "" {
		return -1
	}

	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareIdentifier(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return compareInt(len(as), len(bs))
}

func compareIdentifier(a, b string) int {
	an, aErr := strconv.Atoi(a)
	bn, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return compareInt(an, bn)
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// IsUpdateAvailable reports whether latest is newer than current. Either
// string failing to parse means no update.
func IsUpdateAvailable(current, latest string) bool {
	cur, err := ParseVersion(current)
	if err != nil {
		return false
	}
	lat, err := ParseVersion(latest)
	if err != nil {
		return false
	}
	return cur.LessThan(lat)
}
