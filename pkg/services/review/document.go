package review

import (
	"fmt"
	"strconv"
	"strings"
)

// lookup walks a nested path through a loosely typed YAML document. A
// missing key or a non-mapping intermediate yields absent, never an error.
func lookup(doc map[string]any, path ...string) (any, bool) {
	var cur any = doc
	for _, p := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// lookupMap resolves a path to a mapping, returning an empty map when the
// path is absent or holds something else.
func lookupMap(doc map[string]any, path ...string) map[string]any {
	v, ok := lookup(doc, path...)
	if !ok {
		return map[string]any{}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return m
}

// lookupString resolves a path to its string rendering, "" when absent.
func lookupString(doc map[string]any, path ...string) string {
	v, ok := lookup(doc, path...)
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// asInt coerces an arbitrary scalar to an int. Values that do not parse are
// reported as absent; a malformed numeric field skips its check rather than
// failing the scan.
func asInt(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(fmt.Sprintf("%v", v)))
	if err != nil {
		return 0, false
	}
	return n, true
}

// asList coerces a value to a sequence, nil when absent or not a sequence.
func asList(v any) []any {
	l, ok := v.([]any)
	if !ok {
		return nil
	}
	return l
}
