// Package glsl recovers the interface of a GLSL stage from its source text.
//
// Reflection is a line-oriented pattern scan, not a parser. The supported
// declaration subset is a hard contract; anything else is ignored:
//
//	[layout(...)] [interpolation] in  [qualifier] <type> <name>;
//	[layout(...)] [interpolation] out [qualifier] <type> <name>;
//	[layout(...)] uniform <BlockName> {
//
// Each declaration sits on its own line, ends the line (trailing comments
// are allowed) and declares a single name. The optional interpolation is
// flat, smooth, noperspective or centroid; the optional qualifier is one
// word such as a precision (highp).
// Comments are blanked before scanning, so commented-out declarations never
// match. Uniform block instance names and members are not recorded.
package glsl

import (
	"regexp"
	"sort"
	"strings"
)

var (
	declPattern  = regexp.MustCompile(`(?m)^[ \t]*(?:layout[ \t]*\([^)\n]*\)[ \t]*)?(?:(flat|smooth|noperspective|centroid)[ \t]+)?(in|out)[ \t]+(?:(\w+)[ \t]+)?(\w+)[ \t]+(\w+)[ \t]*;[ \t\r]*$`)
	blockPattern = regexp.MustCompile(`(?m)^[ \t]*(?:layout[ \t]*\([^)\n]*\)[ \t]*)?uniform[ \t]+(\w+)[ \t]*\{`)
)

// Declaration is one in/out variable found in a stage.
type Declaration struct {
	Name string
	// Qualifier holds the interpolation and precision words, space
	// separated, e.g. "flat highp".
	Qualifier string
	Type      string
	Kind      AttributeKind
	// Err is an *UnsupportedTypeError when Type has no AttributeKind.
	Err error
}

// StageInfo is the reflected interface of one stage.
type StageInfo struct {
	Inputs        map[string]Declaration
	Outputs       map[string]Declaration
	UniformBlocks []string
}

// InputNames returns input names in sorted order.
func (s StageInfo) InputNames() []string { return sortedKeys(s.Inputs) }

// OutputNames returns output names in sorted order.
func (s StageInfo) OutputNames() []string { return sortedKeys(s.Outputs) }

// HasUniformBlock reports whether the stage opens a block named name.
func (s StageInfo) HasUniformBlock(name string) bool {
	for _, b := range s.UniformBlocks {
		if b == name {
			return true
		}
	}
	return false
}

// Reflect scans source and returns its declared inputs, outputs and
// uniform block names. It never fails.
func Reflect(source string) StageInfo {
	text := stripComments(source)
	info := StageInfo{
		Inputs:  make(map[string]Declaration),
		Outputs: make(map[string]Declaration),
	}

	for _, m := range declPattern.FindAllStringSubmatch(text, -1) {
		d := Declaration{Qualifier: strings.TrimSpace(m[1] + " " + m[3]), Type: m[4], Name: m[5]}
		kind, ok := KindOf(d.Type)
		if ok {
			d.Kind = kind
		} else {
			d.Err = &UnsupportedTypeError{Name: d.Name, Typename: d.Type}
		}
		if m[2] == "in" {
			info.Inputs[d.Name] = d
		} else {
			info.Outputs[d.Name] = d
		}
	}

	seen := make(map[string]bool)
	for _, m := range blockPattern.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			info.UniformBlocks = append(info.UniformBlocks, m[1])
		}
	}
	return info
}

// stripComments replaces comments with spaces, keeping newlines so line
// anchoring still works.
func stripComments(src string) string {
	if !strings.Contains(src, "/") {
		return src
	}
	var b strings.Builder
	b.Grow(len(src))
	for i := 0; i < len(src); i++ {
		switch {
		case src[i] == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				b.WriteByte(' ')
				i++
			}
			if i < len(src) {
				b.WriteByte('\n')
			}
		case src[i] == '/' && i+1 < len(src) && src[i+1] == '*':
			b.WriteString("  ")
			i += 2
			for i < len(src) && !(src[i] == '*' && i+1 < len(src) && src[i+1] == '/') {
				if src[i] == '\n' {
					b.WriteByte('\n')
				} else {
					b.WriteByte(' ')
				}
				i++
			}
			if i < len(src) {
				b.WriteString("  ")
				i++
			}
		default:
			b.WriteByte(src[i])
		}
	}
	return b.String()
}

func sortedKeys(m map[string]Declaration) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
