package importsort

import (
	"strings"

	"github.com/pkg/errors"
)

type itemKind int

const (
	itemBinding itemKind = iota
	itemComma
	itemOpen
	itemClose
	itemFrom
	itemPath
	itemType // statement level "type" in front of a brace block
)

// item is a token after "type"/"as" runs have been folded into bindings
type item struct {
	kind    itemKind
	binding Binding
	text    string
}

// foldItems turns the token stream of one statement (without the leading
// "import" keyword) into items. "type" is a modifier only when a name
// follows it and "as" is folded into the binding before it.
func foldItems(tokens []token) ([]item, error) {
	var items []item

	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		next := func(n int) token {
			if i+n < len(tokens) {
				return tokens[i+n]
			}
			return token{kind: tokenNone}
		}

		switch t.kind {
		case tokenComma:
			items = append(items, item{kind: itemComma, text: t.text})
		case tokenOpenBrace:
			items = append(items, item{kind: itemOpen, text: t.text})
		case tokenCloseBrace:
			items = append(items, item{kind: itemClose, text: t.text})
		case tokenString:
			items = append(items, item{kind: itemPath, text: t.text})
		case tokenSemicolon:
			return nil, errors.New(`unexpected ";"`)
		case tokenWord:
			if t.text == "from" && next(1).kind == tokenString {
				items = append(items, item{kind: itemFrom, text: t.text})
				continue
			}

			b := Binding{Name: t.text}
			if t.text == "type" {
				switch n := next(1); {
				case n.kind == tokenOpenBrace && len(items) == 0:
					items = append(items, item{kind: itemType, text: t.text})
					continue
				case n.kind == tokenWord && n.text != "as" && !(n.text == "from" && next(2).kind == tokenString):
					b = Binding{Name: n.text, TypeOnly: true}
					i++
				}
			}

			if next(1).is(tokenWord, "as") {
				alias := next(2)
				if alias.kind != tokenWord {
					return nil, errors.Errorf("missing alias after %q", b.Name+" as")
				}
				b.Alias = alias.text
				i += 2
			}
			items = append(items, item{kind: itemBinding, binding: b, text: b.String()})
		}
	}

	return items, nil
}

type parseState int

const (
	expectKeywordOrDefault parseState = iota
	expectNamedOpenOrFrom
	insideNamedList
	expectFrom
	expectPath
	parsed
)

// parseStatement matches the tokens of one statement against the supported
// import shapes. line is the statement's first line, used for errors.
func parseStatement(tokens []token, line int) (*Statement, error) {
	if len(tokens) == 0 || !tokens[0].is(tokenWord, "import") {
		return nil, malformed(line, `expected "import"`)
	}

	stmt := &Statement{}
	last := len(tokens) - 1
	if tokens[last].kind == tokenSemicolon {
		stmt.Semicolon = true
		tokens = tokens[:last]
	}

	items, err := foldItems(tokens[1:])
	if err != nil {
		return nil, malformed(line, "%v", err)
	}

	state := expectKeywordOrDefault
	afterComma := false

	for _, it := range items {
		switch state {
		case expectKeywordOrDefault:
			switch it.kind {
			case itemType:
				stmt.TypeOnly = true
				continue
			case itemOpen:
				stmt.Named = []Binding{}
				state = insideNamedList
				continue
			case itemPath:
				if !stmt.TypeOnly {
					stmt.Path = it.text
					state = parsed
					continue
				}
			case itemBinding:
				if !stmt.TypeOnly {
					b := it.binding
					stmt.Default = &b
					state = expectNamedOpenOrFrom
					continue
				}
			}

		case expectNamedOpenOrFrom:
			switch {
			case it.kind == itemComma && !afterComma:
				afterComma = true
				continue
			case it.kind == itemOpen && afterComma:
				stmt.Named = []Binding{}
				state = insideNamedList
				continue
			case it.kind == itemFrom && !afterComma:
				state = expectPath
				continue
			}

		case insideNamedList:
			switch it.kind {
			case itemBinding:
				stmt.Named = append(stmt.Named, it.binding)
				continue
			case itemComma:
				// separators are optional, trailing commas are allowed
				continue
			case itemClose:
				if len(stmt.Named) == 0 {
					return nil, malformed(line, "empty named import list")
				}
				state = expectFrom
				continue
			}

		case expectFrom:
			if it.kind == itemFrom {
				state = expectPath
				continue
			}

		case expectPath:
			if it.kind == itemPath {
				stmt.Path = it.text
				state = parsed
				continue
			}
		}

		return nil, malformed(line, "unexpected %q", it.text)
	}

	switch {
	case state != parsed:
		return nil, malformed(line, "incomplete import statement")
	case stmt.Path == "":
		return nil, malformed(line, "empty module path")
	}

	if err := checkDuplicates(stmt.Named); err != nil {
		return nil, malformed(line, "%v", err)
	}

	stmt.Anonymous = stmt.Default == nil && stmt.Named == nil
	stmt.Namespace = namespaceOf(stmt.Path)
	return stmt, nil
}

// checkDuplicates rejects a brace block that imports the same name under
// the same local name twice
func checkDuplicates(named []Binding) error {
	seen := make(map[[2]string]bool, len(named))
	for _, b := range named {
		key := [2]string{b.Name, b.Alias}
		if seen[key] {
			return errors.Errorf("duplicate binding %q", b.String())
		}
		seen[key] = true
	}
	return nil
}

// leadingComments collects the consecutive "//" lines directly above line,
// top-down
func (d *document) leadingComments(line int) []string {
	start := line
	for start > 0 && strings.HasPrefix(d.lines[start-1].text, "//") {
		start--
	}
	if start == line {
		return nil
	}
	comments := make([]string, 0, line-start)
	for i := start; i < line; i++ {
		comments = append(comments, d.lines[i].text)
	}
	return comments
}

// parse reads every import statement of the document
func (d *document) parse() ([]*Statement, error) {
	var statements []*Statement

	for cursor := 0; cursor < len(d.lines); {
		if !isImportLine(d.lines[cursor].text) {
			cursor++
			continue
		}

		start := cursor
		tokens, comment, err := d.readStatementTokens(&cursor)
		if err != nil {
			return nil, err
		}

		stmt, err := parseStatement(tokens, start)
		if err != nil {
			return nil, err
		}

		stmt.TrailingComment = comment
		stmt.LineStart = start
		stmt.LineEnd = cursor - 1
		if comments := d.leadingComments(start); len(comments) > 0 {
			stmt.Comments = comments
			stmt.LineStart -= len(comments)
		}

		statements = append(statements, stmt)
	}

	return statements, nil
}
