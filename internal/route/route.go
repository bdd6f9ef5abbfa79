package route

import (
	"fmt"
	"strings"
)

// Params holds the named segments bound while matching a pattern, e.g. ":dataset".
type Params map[string]string

// Format formats HTTP method and path into a route string
func Format(method, path string) string {
	return fmt.Sprintf("%s:%s", strings.ToUpper(method), path)
}

// IsValidPattern validates that a route pattern is well-formed
func IsValidPattern(path string) bool {
	if path == "" {
		return false
	}

	if !strings.HasPrefix(path, "/") {
		return false
	}

	if strings.Contains(path, "**") {
		return false // Double wildcards not supported
	}

	// Only a trailing /* is allowed, never "/foo*"
	if strings.HasSuffix(path, "*") && !strings.HasSuffix(path, "/*") {
		return false
	}

	segs := segments(path)
	for i, seg := range segs {
		if strings.Contains(seg, "*") && seg != "*" {
			return false
		}
		if seg == ":" {
			return false // Named segment without a name
		}
		if seg == "*" && i != len(segs)-1 && isPrefixPattern(path) {
			// "/a/*/b/*" mixes a single segment wildcard with a prefix wildcard
			return false
		}
	}

	return true
}

// Match reports whether path matches pattern and returns the named segments it bound.
//
// Supported pattern forms:
//   - "/api/v1/series"   literal
//   - "/1/events/:name"  named single segment
//   - "/api/*/x"         anonymous single segment
//   - "/api/v1/collector/*" trailing prefix wildcard (matches the prefix itself too)
func Match(pattern, path string) (Params, bool) {
	if pattern == path && !strings.ContainsAny(pattern, "*:") {
		return nil, true
	}

	if isPrefixPattern(pattern) {
		prefix := strings.TrimSuffix(pattern, "/*")
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return nil, true
		}
		return nil, false
	}

	return matchSegments(segments(pattern), segments(path))
}

// matchSegments handles segment-aware matching of named and anonymous parameters
func matchSegments(patternSegments, pathSegments []string) (Params, bool) {
	// Must have same number of segments for exact segment matching
	if len(patternSegments) != len(pathSegments) {
		return nil, false
	}

	var params Params
	for i, seg := range patternSegments {
		switch {
		case seg == "*":
			continue
		case isNamed(seg):
			if pathSegments[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(Params)
			}
			params[seg[1:]] = pathSegments[i]
		case seg != pathSegments[i]:
			return nil, false
		}
	}

	return params, true
}

// Class buckets patterns by how much of a path they pin down.
type Class int

const (
	// ClassLiteral patterns contain no parameter at all.
	ClassLiteral Class = iota
	// ClassParam patterns contain single segment parameters.
	ClassParam
	// ClassPrefix patterns end with a "/*" prefix wildcard.
	ClassPrefix
)

// Specificity returns the class of a pattern and the number of literal segments in it.
// Lower class first, then more literal segments first, is the evaluation order.
func Specificity(pattern string) (Class, int) {
	class := ClassLiteral
	literals := 0
	for _, seg := range segments(pattern) {
		switch {
		case seg == "*" || isNamed(seg):
			if class == ClassLiteral {
				class = ClassParam
			}
		default:
			literals++
		}
	}
	if isPrefixPattern(pattern) {
		class = ClassPrefix
	}
	return class, literals
}

func isPrefixPattern(pattern string) bool {
	return strings.HasSuffix(pattern, "/*")
}

// isNamed reports whether a segment is a ":name" parameter. Segments such as
// "entries:write" contain a colon but are literals.
func isNamed(seg string) bool {
	return len(seg) > 1 && seg[0] == ':'
}

func segments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, "/")
}
