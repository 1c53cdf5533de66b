package formatter

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	errmsg "github.com/siyuan-infoblox/nice-import-sorting/pkg/errors"
	"github.com/siyuan-infoblox/nice-import-sorting/pkg/importsort"
	"github.com/siyuan-infoblox/nice-import-sorting/pkg/syntax"
	"github.com/siyuan-infoblox/nice-import-sorting/pkg/utils"
)

var (
	// ErrRewriteBreaksSyntax is returned when the sorted output would not
	// parse while the original did
	ErrRewriteBreaksSyntax = errors.New(errmsg.ErrMsgRewriteBreaksSyntax)

	// ErrUnsortedImports is returned by check runs that found files to sort
	ErrUnsortedImports = errors.New("check failed")
)

// cacheSize bounds the number of files whose sorted content is remembered
const cacheSize = 4096

// Formatter sorts the imports of the source files below a path
type Formatter interface {
	ProcessPath(ctx context.Context, path string) error
	Watch(ctx context.Context, path string) error
}

type FormatterConfig struct {
	FilePath string            // path to the source file
	Sorting  importsort.Config // roots and groups
	InPlace  bool              // whether to modify files in place
	Check    bool              // only report files whose imports are not sorted
	Verify   bool              // refuse rewrites that introduce syntax errors
	Jobs     int               // files processed concurrently, 0 means GOMAXPROCS
	Out      io.Writer         // defaults to os.Stdout
	ErrOut   io.Writer         // defaults to os.Stderr
}

// formatter handles reading, sorting and writing source files
type formatter struct {
	config FormatterConfig

	// sorted maps a path to the hash of the content last known to be
	// sorted, so unchanged files and our own writes are not processed again
	sorted *lru.Cache[string, [sha256.Size]byte]
	mu     sync.Mutex // serializes output
}

// New creates a new formatter for the given configuration
func New(config FormatterConfig) *formatter {
	if config.Out == nil {
		config.Out = os.Stdout
	}
	if config.ErrOut == nil {
		config.ErrOut = os.Stderr
	}
	// lru.New only fails for a non-positive size
	sorted, _ := lru.New[string, [sha256.Size]byte](cacheSize)
	return &formatter{
		config: config,
		sorted: sorted,
	}
}

func (g *formatter) getFilePath() string {
	return g.config.FilePath
}

func (g *formatter) getInPlace() bool {
	return g.config.InPlace
}

func (g *formatter) getCheck() bool {
	return g.config.Check
}

func (g *formatter) getJobs() int {
	if g.config.Jobs > 0 {
		return g.config.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

func (g *formatter) printf(w io.Writer, format string, args ...any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fmt.Fprintf(w, format, args...)
}

// knownSorted reports whether src is the content last seen sorted for path
func (g *formatter) knownSorted(path string, src []byte) bool {
	sum, ok := g.sorted.Get(path)
	return ok && sum == sha256.Sum256(src)
}

// sortSource sorts the imports of src. The result is checked against the
// tree-sitter grammar of the file when verification is enabled.
func (g *formatter) sortSource(ctx context.Context, path string, src []byte) ([]byte, error) {
	out, err := importsort.Process(string(src), importsort.Options{Config: g.config.Sorting})
	if err != nil {
		return nil, errors.Wrap(err, errmsg.ErrMsgFailedToSortImports)
	}
	output := []byte(out)

	if !g.config.Verify || bytes.Equal(src, output) {
		return output, nil
	}

	broken, err := syntax.Breaks(ctx, path, src, output)
	if err != nil {
		return nil, errors.Wrap(err, errmsg.ErrMsgFailedToVerifySyntax)
	}
	if broken {
		return nil, ErrRewriteBreaksSyntax
	}
	return output, nil
}

// processFile sorts a single file. With verbose set and neither in-place
// nor check mode, the result is printed; when sorting fails the original
// content is printed instead. It reports whether the file's imports were
// not sorted.
func (g *formatter) processFile(ctx context.Context, path string, verbose bool) (bool, error) {
	printResult := verbose && !g.getInPlace() && !g.getCheck()

	src, err := os.ReadFile(path)
	if err != nil {
		return false, errors.Wrap(err, errmsg.ErrMsgFailedToReadFile)
	}

	if g.knownSorted(path, src) {
		if printResult {
			g.printf(g.config.Out, "%s", src)
		}
		return false, nil
	}

	output, err := g.sortSource(ctx, path, src)
	if err != nil {
		if printResult {
			g.printf(g.config.ErrOut, "%s\n", errmsg.InfoMsgSortingFailedOutput)
			g.printf(g.config.Out, "%s", src)
		}
		return false, err
	}

	changed := !bytes.Equal(src, output)
	switch {
	case g.getCheck():
		if changed {
			g.printf(g.config.Out, errmsg.InfoMsgUnsortedFile+"\n", path)
		}
	case g.getInPlace():
		if changed {
			if err := writeFile(path, output); err != nil {
				return false, err
			}
		}
	case printResult:
		g.printf(g.config.Out, "%s", output)
	}

	g.sorted.Add(path, sha256.Sum256(output))
	return changed, nil
}

// writeFile replaces the content of path keeping its permissions
func writeFile(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, errmsg.ErrMsgFailedToWriteFile)
	}
	if err := os.WriteFile(path, data, info.Mode().Perm()); err != nil {
		return errors.Wrap(err, errmsg.ErrMsgFailedToWriteFile)
	}
	return nil
}

// ProcessFile processes the configured source file and sorts its imports
func (g *formatter) ProcessFile(ctx context.Context) error {
	changed, err := g.processFile(ctx, g.getFilePath(), true)
	if err != nil {
		return err
	}
	if g.getCheck() && changed {
		return fmt.Errorf(errmsg.ErrMsgFilesNeedSorting+": %w", 1, ErrUnsortedImports)
	}
	return nil
}

// ProcessFiles processes multiple source files concurrently
func (g *formatter) ProcessFiles(ctx context.Context, filePaths []string) error {
	var processedCount, errorCount, unsortedCount atomic.Int64

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.getJobs())

	for _, filePath := range filePaths {
		filePath := filePath
		eg.Go(func() error {
			changed, err := g.processFile(ctx, filePath, false)
			if err != nil {
				g.printf(g.config.ErrOut, errmsg.InfoMsgErrorProcessing+"\n", filePath, err)
				errorCount.Add(1)
				return nil
			}
			processedCount.Add(1)
			if changed {
				unsortedCount.Add(1)
				if g.getInPlace() && !g.getCheck() {
					g.printf(g.config.Out, errmsg.InfoMsgProcessedFiles+"\n", filePath)
				}
			}
			return nil
		})
	}
	_ = eg.Wait()

	g.printf(g.config.Out, errmsg.InfoMsgProcessedCount, processedCount.Load())
	if errorCount.Load() > 0 {
		g.printf(g.config.Out, errmsg.InfoMsgErrorCount, errorCount.Load())
	}
	g.printf(g.config.Out, "\n")

	if errorCount.Load() > 0 {
		return fmt.Errorf(errmsg.ErrMsgFilesFailedToProcess, errorCount.Load())
	}
	if g.getCheck() && unsortedCount.Load() > 0 {
		return fmt.Errorf(errmsg.ErrMsgFilesNeedSorting+": %w", unsortedCount.Load(), ErrUnsortedImports)
	}
	return nil
}

// ProcessPath processes a file or directory path
func (g *formatter) ProcessPath(ctx context.Context, path string) error {
	isDir, err := utils.IsDirectory(path)
	if err != nil {
		return errors.Wrap(err, errmsg.ErrMsgFailedToCheckPath)
	}

	if !isDir {
		g.config.FilePath = path
		return g.ProcessFile(ctx)
	}

	if !g.getInPlace() && !g.getCheck() {
		return errors.New(errmsg.ErrMsgDirectoryRequiresInPlace)
	}

	files, err := utils.FindSourceFiles(path)
	if err != nil {
		return errors.Wrap(err, errmsg.ErrMsgFailedToFindSourceFiles)
	}

	if len(files) == 0 {
		g.printf(g.config.Out, errmsg.InfoMsgNoSourceFilesFound+"\n", path)
		return nil
	}

	g.printf(g.config.Out, errmsg.InfoMsgFoundSourceFiles+"\n", len(files), path)
	if roots := g.config.Sorting.Roots; len(roots) > 0 {
		g.printf(g.config.Out, errmsg.InfoMsgRoots+"\n", strings.Join(roots, ", "))
	}
	if groups := g.config.Sorting.Groups; len(groups) > 0 {
		g.printf(g.config.Out, errmsg.InfoMsgGroups+"\n", strings.Join(groups, ", "))
	}
	g.printf(g.config.Out, "\n")

	return g.ProcessFiles(ctx, files)
}
