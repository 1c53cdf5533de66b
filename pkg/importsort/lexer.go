package importsort

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// line is one physical source line
type line struct {
	raw  string // as found in the source
	text string // trimmed, used for parsing
}

func (l line) blank() bool {
	return l.text == ""
}

// document is the line view of a source file
type document struct {
	lines           []line
	eol             string
	trailingNewline bool
}

// newDocument splits src into lines, remembering the line ending style and
// whether the input ended with a newline.
func newDocument(src string) *document {
	doc := &document{eol: "\n"}
	if strings.Contains(src, "\r\n") {
		doc.eol = "\r\n"
		src = strings.ReplaceAll(src, "\r\n", "\n")
	}
	if strings.HasSuffix(src, "\n") {
		doc.trailingNewline = true
		src = strings.TrimSuffix(src, "\n")
	}
	for _, raw := range strings.Split(src, "\n") {
		doc.lines = append(doc.lines, line{raw: raw, text: strings.TrimSpace(raw)})
	}
	return doc
}

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenString
	tokenComma
	tokenOpenBrace
	tokenCloseBrace
	tokenSemicolon
	tokenNone // past the end of the stream
)

type token struct {
	kind tokenKind
	text string // quotes are stripped from strings
}

func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

// isImportLine reports whether a trimmed line starts an import declaration.
// Dynamic imports ("import(") are not declarations.
func isImportLine(text string) bool {
	rest, ok := strings.CutPrefix(text, "import")
	if !ok || rest == "" {
		return false
	}
	switch rest[0] {
	case ' ', '\t', '{', '"', '\'':
		return true
	}
	return false
}

// lexLine splits one trimmed line into tokens. A "//" comment outside of a
// string ends the line and is returned separately.
func lexLine(text string) (tokens []token, comment string, err error) {
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, token{kind: tokenWord, text: word.String()})
			word.Reset()
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			flush()
			return tokens, strings.TrimSpace(text[i:]), nil
		case c == '\'' || c == '"':
			flush()
			end := strings.IndexByte(text[i+1:], c)
			if end < 0 {
				return nil, "", errors.New("unterminated string")
			}
			tokens = append(tokens, token{kind: tokenString, text: text[i+1 : i+1+end]})
			i += end + 1
		case c == ',':
			flush()
			tokens = append(tokens, token{kind: tokenComma, text: ","})
		case c == '{':
			flush()
			tokens = append(tokens, token{kind: tokenOpenBrace, text: "{"})
		case c == '}':
			flush()
			tokens = append(tokens, token{kind: tokenCloseBrace, text: "}"})
		case c == ';':
			flush()
			tokens = append(tokens, token{kind: tokenSemicolon, text: ";"})
		case c < 0x80 && unicode.IsSpace(rune(c)):
			flush()
		default:
			word.WriteByte(c)
		}
	}
	flush()
	return tokens, "", nil
}

// terminated reports whether the tokens read so far form a complete
// statement: the last token is the quoted path, or a "from" outside of the
// brace block has been followed by something the parser can judge.
func terminated(tokens []token) bool {
	last := len(tokens) - 1
	for last >= 0 && tokens[last].kind == tokenSemicolon {
		last--
	}
	if last < 0 {
		return false
	}
	if tokens[last].kind == tokenString {
		return true
	}
	depth := 0
	for i := 1; i < last; i++ {
		switch tokens[i].kind {
		case tokenOpenBrace:
			depth++
		case tokenCloseBrace:
			depth--
		case tokenWord:
			if depth == 0 && tokens[i].text == "from" {
				return true
			}
		}
	}
	return false
}

// readStatementTokens consumes the lines of the statement starting at
// *cursor and returns its tokens plus the comment trailing its last line.
// The cursor is left on the line after the statement.
func (d *document) readStatementTokens(cursor *int) ([]token, string, error) {
	start := *cursor
	var tokens []token

	for {
		if *cursor >= len(d.lines) {
			return nil, "", malformed(start, "unexpected end of input")
		}

		lineTokens, comment, err := lexLine(d.lines[*cursor].text)
		if err != nil {
			return nil, "", malformed(start, "%v on line %d", err, *cursor+1)
		}
		*cursor++
		tokens = append(tokens, lineTokens...)

		if terminated(tokens) {
			return tokens, comment, nil
		}
		if comment != "" {
			return nil, "", malformed(start, "comment inside import statement on line %d", *cursor)
		}
	}
}
