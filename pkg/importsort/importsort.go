// Package importsort reorders the import declarations at the top of a
// JavaScript or TypeScript source file.
//
// The pipeline reads the file line by line, parses every import
// statement with the comment lines directly above it, classifies the
// statements into external, rooted, relative and side-effect imports,
// sorts them and writes them back as one block with a blank line between
// groups. Everything that is not an import statement is kept as it was.
package importsort

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Range is the part of the source a caller asks to be processed
type Range struct {
	Start int
	End   int
}

// Options configures a single run
type Options struct {
	Config
	Range *Range // nil means the whole file
}

// wholeFile reports whether the requested range covers all of src. Only
// whole-file requests are processed.
func (o Options) wholeFile(src string) bool {
	if o.Range == nil {
		return true
	}
	return o.Range.Start <= 0 && o.Range.End >= len(src)-1
}

// Process returns src with its import statements sorted and grouped. When
// the requested range is not the whole file, or the file has no import
// statements, src is returned unchanged. Errors are never accompanied by
// partial output.
func Process(src string, opts Options) (string, error) {
	if !opts.wholeFile(src) {
		return src, nil
	}

	cfg := opts.Config.Normalize()
	doc := newDocument(src)

	statements, err := doc.parse()
	if err != nil {
		return "", errors.Wrap(err, "failed to read import statements")
	}
	if len(statements) == 0 {
		return src, nil
	}

	c := newClassifier(cfg)
	for _, stmt := range statements {
		c.classify(stmt)
	}

	ordered := newOrderer(cfg).order(statements)
	return compose(doc, ordered), nil
}

// Sort is the boundary used by hosts: any failure is reported to w
// (stderr when w is nil) and the original source is returned.
func Sort(src string, opts Options, w io.Writer) string {
	out, err := Process(src, opts)
	if err != nil {
		if w == nil {
			w = os.Stderr
		}
		fmt.Fprintf(w, "import sorting failed: %v\n", err)
		return src
	}
	return out
}
