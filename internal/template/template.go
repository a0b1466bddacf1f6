// Package template implements the ${name} substitution engine used to
// resolve cube field SQL, filter templates, and join on_sql fragments. It
// performs purely textual replacement and never parses SQL, mirroring the
// dotml compiler's substitute_variables.
package template

import (
	"fmt"
	"regexp"
)

// MaxRecursionDepth bounds recursive substitution passes beyond the first.
const MaxRecursionDepth = 10

var placeholderPattern = regexp.MustCompile(`\$\{([a-zA-Z0-9_.]+)\}`)

// RecursionLimitError is returned when recursive substitution does not
// converge within MaxRecursionDepth additional passes.
type RecursionLimitError struct {
	Fragment string
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("recursive substitution of variables did not converge: %s", e.Fragment)
}

// Substitute replaces ${name} placeholders in tmpl with values from vars.
// Unknown placeholders are left intact. When recursive is true, the result
// is re-scanned for newly introduced placeholders (e.g. a field's sql
// referencing another field) until none with a value in vars remain or
// MaxRecursionDepth additional passes have run, at which point a
// *RecursionLimitError is returned. When recursive is false, exactly one pass is performed
// regardless of residual placeholders.
func Substitute(tmpl string, vars map[string]string, recursive bool) (string, error) {
	if !placeholderPattern.MatchString(tmpl) {
		return tmpl, nil
	}

	result := substituteOnce(tmpl, vars)
	if !recursive {
		return result, nil
	}

	depth := 0
	for hasKnownRef(result, vars) {
		depth++
		if depth > MaxRecursionDepth {
			return "", &RecursionLimitError{Fragment: result}
		}
		result = substituteOnce(result, vars)
	}
	return result, nil
}

// hasKnownRef reports whether s contains a placeholder that vars can fill.
func hasKnownRef(s string, vars map[string]string) bool {
	for _, m := range placeholderPattern.FindAllStringSubmatch(s, -1) {
		if _, ok := vars[m[1]]; ok {
			return true
		}
	}
	return false
}

func substituteOnce(tmpl string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := match[2 : len(match)-1]
		if v, ok := vars[name]; ok {
			return v
		}
		return match
	})
}

// RewriteQualifiedRefs turns every ${cube.field} occurrence in s into
// ${cube__field}, the transformation filter templates undergo before
// substitution so that a qualified reference resolves through the
// "<cube>__<field>" entries Cube View installs in its variable map.
func RewriteQualifiedRefs(s string) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		rewritten := make([]byte, 0, len(name))
		for i := 0; i < len(name); i++ {
			if name[i] == '.' {
				rewritten = append(rewritten, '_', '_')
			} else {
				rewritten = append(rewritten, name[i])
			}
		}
		return "${" + string(rewritten) + "}"
	})
}

// StripMarkers removes the ${ and } delimiters from a template, leaving the
// bare identifier. Used to resolve window metric references, which must
// read a base-subquery column alias rather than be substituted.
func StripMarkers(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '$' && i+1 < len(s) && s[i+1] == '{':
			i++ // skip the '{' too
		case s[i] == '}':
			// skip
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}

// FindRefs returns every ${name} reference within s, in order of
// appearance and including repeats, used to extract implicit field
// references from filter templates during field resolution.
func FindRefs(s string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(s, -1)
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, m[1])
	}
	return refs
}
