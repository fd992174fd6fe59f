package scripthost

import (
	"regexp"
	"strings"

	"github.com/sencbuild/senc/internal/resolver"
)

// importAttrPattern matches one `import ... from "spec" with { type: "json"
// }` or `... assert { type: "json" }` clause on a single line. Both forms
// are accepted since which one a given engine vintage parses is not
// standardised (see the resolver's import-attribute handling).
var importAttrPattern = regexp.MustCompile(`from\s*["']([^"']+)["']\s*(?:with|assert)\s*\{\s*type\s*:\s*["']([a-zA-Z]+)["']\s*\}`)

// scanImportAttributes walks source line by line looking for import
// attribute clauses, since the transpiler lowers them away before the
// native require() the resolver sees ever runs. It returns the
// attributes observed for each specifier that declared one.
func scanImportAttributes(source []byte) map[string]resolver.Attributes {
	out := make(map[string]resolver.Attributes)
	for _, line := range strings.Split(string(source), "\n") {
		match := importAttrPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		specifier, attrType := match[1], match[2]
		out[specifier] = resolver.Attributes{"type": attrType}
	}
	return out
}
