// Package syntax checks JavaScript and TypeScript sources with tree-sitter
// grammars so a rewrite can be refused when it would break a file.
package syntax

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// LanguageFor returns the grammar used for a file, nil when there is none
func LanguageFor(filename string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage()
	case ".tsx":
		return tsx.GetLanguage()
	case ".js", ".jsx", ".mjs", ".cjs":
		return javascript.GetLanguage()
	}
	return nil
}

// HasErrors parses src with the grammar for filename and reports whether
// the tree contains syntax errors. Files without a grammar never have
// errors.
func HasErrors(ctx context.Context, filename string, src []byte) (bool, error) {
	lang := LanguageFor(filename)
	if lang == nil {
		return false, nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return false, errors.Wrapf(err, "failed to parse %s", filename)
	}
	defer tree.Close()

	return tree.RootNode().HasError(), nil
}

// Breaks reports whether after has syntax errors that before did not have.
// A file that did not parse to begin with is never reported.
func Breaks(ctx context.Context, filename string, before, after []byte) (bool, error) {
	afterErrors, err := HasErrors(ctx, filename, after)
	if err != nil || !afterErrors {
		return false, err
	}
	beforeErrors, err := HasErrors(ctx, filename, before)
	if err != nil {
		return false, err
	}
	return !beforeErrors, nil
}
