package importsort

import "strings"

// Binding represents a single imported symbol
type Binding struct {
	Name     string // imported name, "*" for namespace imports
	Alias    string // local name after "as", empty if none
	TypeOnly bool   // binding carries its own "type" modifier
}

// String renders the binding as it appears in a declaration
func (b Binding) String() string {
	var sb strings.Builder
	if b.TypeOnly {
		sb.WriteString("type ")
	}
	sb.WriteString(b.Name)
	if b.Alias != "" {
		sb.WriteString(" as ")
		sb.WriteString(b.Alias)
	}
	return sb.String()
}

// Statement represents a single import declaration together with the
// comment lines attached to it.
type Statement struct {
	Path            string    // module specifier without quotes
	Namespace       string    // grouping key derived from Path, or the matching root
	Default         *Binding  // default or namespace binding, nil if none
	Named           []Binding // bindings inside braces, nil when there is no brace block
	TypeOnly        bool      // "import type { ... }" form
	Anonymous       bool      // side-effect import without bindings
	Comments        []string  // leading line comments, top-down
	TrailingComment string    // "// ..." on the statement's last line
	Semicolon       bool      // statement was terminated by ";"
	LineStart       int       // first line of the span (comments included), 0-based
	LineEnd         int       // last line of the span, 0-based
	Group           Group

	bucket bucket
	label  string // configured group the statement falls into, empty if none
}

// Group identifies the block a statement is emitted in. Consecutive
// statements with different groups are separated by a blank line.
type Group int

const (
	ExternalGroup  Group = 1
	RootGroupBase  Group = 2 // configured groups, then ungrouped roots, are numbered from here
	RelativeGroup  Group = 1000
	AnonymousGroup Group = 2000
)

type bucket int

const (
	externalBucket bucket = iota
	rootedBucket
	relativeBucket
	anonymousBucket
)

// sortName returns the name a statement is ordered by
func (s *Statement) sortName() string {
	if s.Default != nil {
		return s.Default.Name
	}
	if len(s.Named) > 0 {
		return s.Named[0].Name
	}
	return ""
}

// Declaration renders the import declaration line without comments
func (s *Statement) Declaration(semicolon bool) string {
	parts := []string{"import"}

	if s.TypeOnly {
		parts = append(parts, "type")
	}

	if s.Default != nil {
		def := s.Default.String()
		if s.Named != nil {
			def += ","
		}
		parts = append(parts, def)
	}

	if s.Named != nil {
		names := make([]string, len(s.Named))
		for i, b := range s.Named {
			names[i] = b.String()
		}
		parts = append(parts, "{ "+strings.Join(names, ", ")+" }")
	}

	if !s.Anonymous {
		parts = append(parts, "from")
	}

	decl := strings.Join(parts, " ") + ` "` + s.Path + `"`
	if semicolon {
		decl += ";"
	}
	if s.TrailingComment != "" {
		decl += " " + s.TrailingComment
	}
	return decl
}

// namespaceOf derives the grouping key of an import path: "." for relative
// paths, the registry scope for scoped packages and the first path segment
// otherwise.
func namespaceOf(path string) string {
	if isRelative(path) {
		return "."
	}
	first, _, _ := strings.Cut(path, "/")
	return first
}

func isRelative(path string) bool {
	return strings.HasPrefix(path, ".")
}

func isScoped(path string) bool {
	return strings.HasPrefix(path, "@")
}
