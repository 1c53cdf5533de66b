package formatter

import (
	"bytes"
	"context"
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/siyuan-infoblox/nice-import-sorting/pkg/importsort"
)

const unsortedSource = `import b from './b';
import React from 'react';
import { z } from 'app/z';

const x = 1;
`

const sortedSource = `import React from "react";

import { z } from "app/z";

import b from "./b";

const x = 1;
`

const malformedSource = `import { a from 'x';

const y = 2;
`

func newTestFormatter(config FormatterConfig) (*formatter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	config.Out = &out
	config.ErrOut = &errOut
	if config.Sorting.Roots == nil {
		config.Sorting = importsort.Config{Roots: []string{"app"}}
	}
	return New(config), &out, &errOut
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestFormatter_ProcessFile(t *testing.T) {
	ctx := context.Background()

	t.Run("process file in place", func(t *testing.T) {
		req := require.New(t)
		testFile := writeTestFile(t, t.TempDir(), "main.ts", unsortedSource)

		g, out, _ := newTestFormatter(FormatterConfig{FilePath: testFile, InPlace: true})
		req.NoError(g.ProcessFile(ctx))

		req.Equal(sortedSource, readTestFile(t, testFile))
		req.Empty(out.String())
	})

	t.Run("print result to stdout", func(t *testing.T) {
		req := require.New(t)
		testFile := writeTestFile(t, t.TempDir(), "main.ts", unsortedSource)

		g, out, _ := newTestFormatter(FormatterConfig{FilePath: testFile})
		req.NoError(g.ProcessFile(ctx))

		req.Equal(sortedSource, out.String())
		req.Equal(unsortedSource, readTestFile(t, testFile))
	})

	t.Run("process file without imports", func(t *testing.T) {
		req := require.New(t)
		content := "const a = 1;\n"
		testFile := writeTestFile(t, t.TempDir(), "noimports.js", content)

		g, out, _ := newTestFormatter(FormatterConfig{FilePath: testFile})
		req.NoError(g.ProcessFile(ctx))
		req.Equal(content, out.String())
	})

	t.Run("malformed imports print the original file", func(t *testing.T) {
		req := require.New(t)
		testFile := writeTestFile(t, t.TempDir(), "broken.ts", malformedSource)

		g, out, errOut := newTestFormatter(FormatterConfig{FilePath: testFile})
		err := g.ProcessFile(ctx)
		req.Error(err)

		var malformed *importsort.MalformedImportError
		req.True(errors.As(err, &malformed))
		req.Equal(1, malformed.Line)

		req.Equal(malformedSource, out.String())
		req.Contains(errOut.String(), "import sorting failed")
	})

	t.Run("malformed imports are left untouched in place", func(t *testing.T) {
		req := require.New(t)
		testFile := writeTestFile(t, t.TempDir(), "broken.ts", malformedSource)

		g, _, _ := newTestFormatter(FormatterConfig{FilePath: testFile, InPlace: true})
		req.Error(g.ProcessFile(ctx))
		req.Equal(malformedSource, readTestFile(t, testFile))
	})

	t.Run("check reports unsorted file", func(t *testing.T) {
		req := require.New(t)
		testFile := writeTestFile(t, t.TempDir(), "main.ts", unsortedSource)

		g, out, _ := newTestFormatter(FormatterConfig{FilePath: testFile, Check: true})
		err := g.ProcessFile(ctx)
		req.ErrorIs(err, ErrUnsortedImports)
		req.Contains(out.String(), "Unsorted: "+testFile)
		req.Equal(unsortedSource, readTestFile(t, testFile))
	})

	t.Run("check accepts sorted file", func(t *testing.T) {
		req := require.New(t)
		testFile := writeTestFile(t, t.TempDir(), "main.ts", sortedSource)

		g, out, _ := newTestFormatter(FormatterConfig{FilePath: testFile, Check: true})
		req.NoError(g.ProcessFile(ctx))
		req.Empty(out.String())
	})

	t.Run("verified rewrite of a valid file", func(t *testing.T) {
		req := require.New(t)
		testFile := writeTestFile(t, t.TempDir(), "main.ts", unsortedSource)

		g, _, _ := newTestFormatter(FormatterConfig{FilePath: testFile, InPlace: true, Verify: true})
		req.NoError(g.ProcessFile(ctx))
		req.Equal(sortedSource, readTestFile(t, testFile))
	})

	t.Run("process non-existent file", func(t *testing.T) {
		req := require.New(t)
		g, _, _ := newTestFormatter(FormatterConfig{FilePath: "/non/existent/file.ts", InPlace: true})
		req.Error(g.ProcessFile(ctx))
	})
}

func TestFormatter_sortedCache(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	testFile := writeTestFile(t, t.TempDir(), "main.ts", unsortedSource)

	g, _, _ := newTestFormatter(FormatterConfig{FilePath: testFile, InPlace: true})
	req.False(g.knownSorted(testFile, []byte(unsortedSource)))

	changed, err := g.processFile(ctx, testFile, false)
	req.NoError(err)
	req.True(changed)

	// Our own write is recognized and not processed again
	req.True(g.knownSorted(testFile, []byte(sortedSource)))
	changed, err = g.processFile(ctx, testFile, false)
	req.NoError(err)
	req.False(changed)

	// An edit invalidates the entry
	req.NoError(os.WriteFile(testFile, []byte(unsortedSource), 0o644))
	req.False(g.knownSorted(testFile, []byte(unsortedSource)))
	changed, err = g.processFile(ctx, testFile, false)
	req.NoError(err)
	req.True(changed)

	sum, ok := g.sorted.Get(testFile)
	req.True(ok)
	req.Equal(sha256.Sum256([]byte(sortedSource)), sum)
}

func TestFormatter_ProcessPath(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) string {
		dir := t.TempDir()
		writeTestFile(t, dir, "a.ts", unsortedSource)
		writeTestFile(t, dir, "nested/b.jsx", unsortedSource)
		writeTestFile(t, dir, "nested/c.tsx", sortedSource)
		writeTestFile(t, dir, "node_modules/dep/index.js", unsortedSource)
		writeTestFile(t, dir, ".cache/d.ts", unsortedSource)
		writeTestFile(t, dir, "README.md", unsortedSource)
		return dir
	}

	t.Run("directory in place", func(t *testing.T) {
		req := require.New(t)
		dir := setup(t)

		g, out, _ := newTestFormatter(FormatterConfig{InPlace: true, Jobs: 2})
		req.NoError(g.ProcessPath(ctx, dir))

		req.Equal(sortedSource, readTestFile(t, filepath.Join(dir, "a.ts")))
		req.Equal(sortedSource, readTestFile(t, filepath.Join(dir, "nested/b.jsx")))
		req.Equal(sortedSource, readTestFile(t, filepath.Join(dir, "nested/c.tsx")))
		req.Equal(unsortedSource, readTestFile(t, filepath.Join(dir, "node_modules/dep/index.js")))
		req.Equal(unsortedSource, readTestFile(t, filepath.Join(dir, ".cache/d.ts")))
		req.Equal(unsortedSource, readTestFile(t, filepath.Join(dir, "README.md")))

		req.Contains(out.String(), "Found 3 source files")
		req.Contains(out.String(), "Roots: app")
		req.Contains(out.String(), "Processed 3 files successfully")
		req.NotContains(out.String(), "Processed: "+filepath.Join(dir, "nested/c.tsx"))
	})

	t.Run("directory check", func(t *testing.T) {
		req := require.New(t)
		dir := setup(t)

		g, out, _ := newTestFormatter(FormatterConfig{Check: true})
		err := g.ProcessPath(ctx, dir)
		req.ErrorIs(err, ErrUnsortedImports)
		req.Contains(err.Error(), "2 files have unsorted imports")
		req.Contains(out.String(), "Unsorted: "+filepath.Join(dir, "a.ts"))
		req.Equal(unsortedSource, readTestFile(t, filepath.Join(dir, "a.ts")))
	})

	t.Run("directory with a malformed file", func(t *testing.T) {
		req := require.New(t)
		dir := setup(t)
		broken := writeTestFile(t, dir, "broken.mjs", malformedSource)

		g, _, errOut := newTestFormatter(FormatterConfig{InPlace: true})
		err := g.ProcessPath(ctx, dir)
		req.EqualError(err, "1 files failed to process")
		req.Contains(errOut.String(), "Error processing "+broken)

		req.Equal(malformedSource, readTestFile(t, broken))
		req.Equal(sortedSource, readTestFile(t, filepath.Join(dir, "a.ts")))
	})

	t.Run("directory requires in-place or check", func(t *testing.T) {
		req := require.New(t)
		g, _, _ := newTestFormatter(FormatterConfig{})
		req.Error(g.ProcessPath(ctx, setup(t)))
	})

	t.Run("empty directory", func(t *testing.T) {
		req := require.New(t)
		dir := t.TempDir()
		g, out, _ := newTestFormatter(FormatterConfig{InPlace: true})
		req.NoError(g.ProcessPath(ctx, dir))
		req.Contains(out.String(), "No source files found")
	})

	t.Run("single file path", func(t *testing.T) {
		req := require.New(t)
		testFile := writeTestFile(t, t.TempDir(), "main.cts", unsortedSource)
		g, out, _ := newTestFormatter(FormatterConfig{})
		req.NoError(g.ProcessPath(ctx, testFile))
		req.Equal(sortedSource, out.String())
	})

	t.Run("missing path", func(t *testing.T) {
		req := require.New(t)
		g, _, _ := newTestFormatter(FormatterConfig{InPlace: true})
		req.Error(g.ProcessPath(ctx, "/non/existent/dir"))
	})
}
