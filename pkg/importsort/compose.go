package importsort

import "strings"

// removeStatements blanks every line covered by a statement span
func removeStatements(lines []line, statements []*Statement) []line {
	out := append([]line(nil), lines...)
	for _, stmt := range statements {
		for n := stmt.LineStart; n <= stmt.LineEnd; n++ {
			out[n] = line{}
		}
	}
	return out
}

// collapseBlankLines keeps a single blank line out of every run of blanks
func collapseBlankLines(lines []line) []line {
	out := make([]line, 0, len(lines))
	for i, l := range lines {
		if l.blank() && i+1 < len(lines) && lines[i+1].blank() {
			continue
		}
		out = append(out, l)
	}
	return out
}

// compose rebuilds the source: the prologue (the lines before the first
// blank line of the remaining body), the ordered import block with a blank
// line between groups, then the rest of the body. Blank lines at the top of
// the file are dropped.
func compose(doc *document, statements []*Statement) string {
	top := 0
	for top < len(doc.lines) && doc.lines[top].blank() {
		top++
	}
	body := collapseBlankLines(removeStatements(doc.lines, statements)[top:])

	semicolon := false
	for _, stmt := range statements {
		semicolon = semicolon || stmt.Semicolon
	}

	var out []string
	i := 0
	for ; i < len(body) && !body[i].blank(); i++ {
		out = append(out, body[i].raw)
	}
	i++ // the blank line ending the prologue

	for n, stmt := range statements {
		if len(out) > 0 && (n == 0 || stmt.Group != statements[n-1].Group) {
			out = append(out, "")
		}
		out = append(out, stmt.Comments...)
		out = append(out, stmt.Declaration(semicolon))
	}

	if i < len(body) {
		out = append(out, "")
		for ; i < len(body); i++ {
			out = append(out, body[i].raw)
		}
	}

	result := strings.Join(out, doc.eol)
	if doc.trailingNewline {
		result += doc.eol
	}
	return result
}
