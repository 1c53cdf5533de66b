package importsort

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// comparer implements the name rule: a name starting with an uppercase
// letter sorts before any other name, otherwise names are collated with the
// root locale and ties fall back to code point order.
//
// A collate.Collator is not safe for concurrent use, so every run builds
// its own comparer.
type comparer struct {
	coll *collate.Collator
}

func newComparer() *comparer {
	return &comparer{coll: collate.New(language.Und)}
}

func caseTier(name string) int {
	r, _ := utf8.DecodeRuneInString(name)
	if unicode.IsUpper(r) {
		return 0
	}
	return 1
}

func (c *comparer) names(a, b string) int {
	if ta, tb := caseTier(a), caseTier(b); ta != tb {
		return ta - tb
	}
	if r := c.coll.CompareString(a, b); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

func (c *comparer) bindings(a, b Binding) int {
	if r := c.names(a.Name, b.Name); r != 0 {
		return r
	}
	if r := strings.Compare(a.Alias, b.Alias); r != 0 {
		return r
	}
	return compareBool(a.TypeOnly, b.TypeOnly)
}

// statements orders two statements of the same bucket. The key is
// (scoped first, default before named, name, path, declaration, comments)
// so the result does not depend on the input order.
func (c *comparer) statements(a, b *Statement, scopedFirst bool) int {
	if scopedFirst {
		if r := compareBool(!isScoped(a.Path), !isScoped(b.Path)); r != 0 {
			return r
		}
	}
	if r := compareBool(a.Default == nil, b.Default == nil); r != 0 {
		return r
	}
	if r := c.names(a.sortName(), b.sortName()); r != 0 {
		return r
	}
	return compareRest(a, b)
}

func compareRest(a, b *Statement) int {
	if r := strings.Compare(a.Path, b.Path); r != 0 {
		return r
	}
	if r := strings.Compare(a.Declaration(false), b.Declaration(false)); r != 0 {
		return r
	}
	return strings.Compare(strings.Join(a.Comments, "\n"), strings.Join(b.Comments, "\n"))
}

// compareBool orders false before true
func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// orderer produces the final statement sequence. It expects a normalized
// Config and statements that went through the classifier.
type orderer struct {
	cfg Config
	cmp *comparer
}

func newOrderer(cfg Config) *orderer {
	return &orderer{cfg: cfg, cmp: newComparer()}
}

func (o *orderer) sortBucket(statements []*Statement, group Group, scopedFirst bool) []*Statement {
	slices.SortStableFunc(statements, func(a, b *Statement) int {
		return o.cmp.statements(a, b, scopedFirst)
	})
	for _, stmt := range statements {
		stmt.Group = group
	}
	return statements
}

// order sorts the named bindings of every statement and concatenates the
// buckets: external, configured groups, ungrouped imports per root (in root
// order), relative and anonymous imports.
func (o *orderer) order(statements []*Statement) []*Statement {
	var (
		external, relative, anonymous []*Statement
		labelled                      = make(map[string][]*Statement)
		ungrouped                     = make(map[string][]*Statement)
	)

	for _, stmt := range statements {
		slices.SortStableFunc(stmt.Named, o.cmp.bindings)

		switch stmt.bucket {
		case externalBucket:
			external = append(external, stmt)
		case relativeBucket:
			relative = append(relative, stmt)
		case anonymousBucket:
			anonymous = append(anonymous, stmt)
		case rootedBucket:
			if stmt.label != "" {
				labelled[stmt.label] = append(labelled[stmt.label], stmt)
				continue
			}
			ungrouped[stmt.Namespace] = append(ungrouped[stmt.Namespace], stmt)
		}
	}

	out := make([]*Statement, 0, len(statements))
	out = append(out, o.sortBucket(external, ExternalGroup, true)...)

	group := RootGroupBase
	for _, label := range o.cfg.Groups {
		out = append(out, o.sortBucket(labelled[label], group, false)...)
		group++
	}
	for _, root := range o.cfg.Roots {
		if len(ungrouped[root]) == 0 {
			continue
		}
		out = append(out, o.sortBucket(ungrouped[root], group, false)...)
		group++
	}

	out = append(out, o.sortBucket(relative, RelativeGroup, false)...)

	slices.SortStableFunc(anonymous, func(a, b *Statement) int {
		return compareRest(a, b)
	})
	for _, stmt := range anonymous {
		stmt.Group = AnonymousGroup
	}
	return append(out, anonymous...)
}
