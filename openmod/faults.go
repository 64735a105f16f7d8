package openmod

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/MRtecno98/openmod/api"
)

// LoadFault is raised when a unit's members cannot be fully resolved,
// typically because a library it was linked against is not installed.
// The module loader gives no structured failure payload, only the
// inner diagnostics it produced while resolving.
type LoadFault struct {
	Unit  string
	Inner []error
}

func (f *LoadFault) Error() string {
	return fmt.Sprintf("load fault in %s: %d unresolved members", f.Unit, len(f.Inner))
}

// The two diagnostic shapes the module loader emits. Both encode the
// dependent library name and its four part version in message text,
// which is the only signal left once the loader has already failed.
var (
	typeLoadPattern = regexp.MustCompile(
		`could not load type '[^']+' from module '([^',]+), version=(\d+(?:\.\d+){1,3})'`)

	fileNotFoundPattern = regexp.MustCompile(
		`could not load file or module '([^',]+), version=(\d+(?:\.\d+){1,3})'`)
)

// ExtractMissingDependencies recovers the missing library requirements
// from a load fault's diagnostics. Four part versions are reduced to
// three, repeated names keep the highest candidate version and
// diagnostics matching neither shape are ignored.
func ExtractMissingDependencies(diagnostics []error) map[string]api.SemanticVersion {
	missing := make(map[string]api.SemanticVersion)

	for _, diag := range diagnostics {
		if diag == nil {
			continue
		}

		text := diag.Error()

		match := typeLoadPattern.FindStringSubmatch(text)
		if match == nil {
			match = fileNotFoundPattern.FindStringSubmatch(text)
		}

		if match == nil {
			continue
		}

		name := strings.TrimSpace(match[1])

		ver, err := api.ParseVersion(match[2])
		if err != nil {
			continue
		}

		if prev, ok := missing[name]; !ok || ver.Newer(prev) {
			missing[name] = ver
		}
	}

	return missing
}
