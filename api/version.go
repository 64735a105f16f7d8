package api

import (
	"fmt"
	"strconv"
	"strings"
)

// SemanticVersion is a three part package version. Four part versions are
// accepted on parse but the revision field carries no packaging meaning
// and is dropped.
type SemanticVersion struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
}

func ParseVersion(raw string) (SemanticVersion, error) {
	var ver SemanticVersion

	raw = strings.TrimPrefix(strings.TrimSpace(raw), "v")
	if raw == "" {
		return ver, fmt.Errorf("empty version string")
	}

	if i := strings.IndexByte(raw, '-'); i >= 0 {
		ver.Prerelease = raw[i+1:]
		raw = raw[:i]
	}

	fields := strings.Split(raw, ".")
	if len(fields) < 2 || len(fields) > 4 {
		return ver, fmt.Errorf("malformed version: %s", raw)
	}

	parts := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return ver, fmt.Errorf("malformed version field %q in %s", f, raw)
		}

		parts[i] = n
	}

	ver.Major, ver.Minor = parts[0], parts[1]
	if len(parts) > 2 {
		ver.Patch = parts[2]
	}

	// parts[3], the revision, is intentionally discarded

	return ver, nil
}

func MustParseVersion(raw string) SemanticVersion {
	ver, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}

	return ver
}

// Compare returns a negative number if v is older than other,
// zero if equal and a positive number if newer.
func (v SemanticVersion) Compare(other SemanticVersion) int {
	if v.Major != other.Major {
		return v.Major - other.Major
	}

	if v.Minor != other.Minor {
		return v.Minor - other.Minor
	}

	if v.Patch != other.Patch {
		return v.Patch - other.Patch
	}

	// A prerelease sorts before the corresponding release
	if (v.Prerelease == "") != (other.Prerelease == "") {
		if v.Prerelease == "" {
			return 1
		}

		return -1
	}

	return strings.Compare(v.Prerelease, other.Prerelease)
}

func (v SemanticVersion) Newer(other SemanticVersion) bool {
	return v.Compare(other) > 0
}

func (v SemanticVersion) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}

	return s
}
