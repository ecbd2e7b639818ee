package diagram

import (
	"strings"
	"unicode"
)

// acronymKinds maps type names whose kind starts with an acronym. Plain
// snake-to-camel conversion would turn "er_diagram" into "ErDiagram".
var acronymKinds = map[string]string{
	"er_diagram": "ERDiagram",
}

// TypeName converts a kind identifier to its lower snake case envelope type:
// "GitgraphDiagram" becomes "gitgraph_diagram" and "ERDiagram" becomes
// "er_diagram". An underscore is inserted before an upper-case letter that
// follows a lower-case letter or digit, and before the last letter of an
// upper-case run that is followed by a lower-case letter.
func TypeName(kind string) string {
	runes := []rune(kind)
	var b strings.Builder
	b.Grow(len(kind) + 4)
	for i, r := range runes {
		if !unicode.IsUpper(r) {
			b.WriteRune(r)
			continue
		}
		if i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// KindName converts an envelope type back to a kind identifier.
func KindName(typeName string) string {
	if kind, ok := acronymKinds[typeName]; ok {
		return kind
	}
	parts := strings.Split(typeName, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}
