package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	errmsg "github.com/siyuan-infoblox/nice-import-sorting/pkg/errors"
	"github.com/siyuan-infoblox/nice-import-sorting/pkg/config"
	"github.com/siyuan-infoblox/nice-import-sorting/pkg/formatter"
	"github.com/siyuan-infoblox/nice-import-sorting/pkg/version"
)

const (
	UseDescription   = "nis [flags] PATH..."
	ShortDescription = "Nice import sorting - A tool to group and sort JavaScript/TypeScript imports"
	LongDescription  = `nis is a command-line tool that groups and sorts the import statements
at the top of JavaScript and TypeScript files.

It organizes imports into groups:
1. Packages (scoped @org packages first)
2. Configured groups below a root (e.g. app/components)
3. Other imports below a root, one group per root (e.g. app)
4. Relative imports (./, ../)
5. Side-effect imports (import "./styles.css")

Roots and groups are read from flags, the NIS_ROOTS/NIS_GROUPS environment
variables (a .env file is loaded when present) and a .nis.yaml file found
in the processed directory or one of its parents.

PATH can be either a single source file or a directory. A single file is
printed to stdout unless --in-place is given. Directories are processed
recursively and require --in-place or --check; node_modules, vendor and
hidden directories are skipped.`
)

var (
	roots       []string
	groups      []string
	configPath  string
	inPlace     bool
	check       bool
	watch       bool
	verify      bool
	jobs        int
	showVersion bool
)

var rootCmd = &cobra.Command{
	Use:          UseDescription,
	Short:        ShortDescription,
	Long:         LongDescription,
	Args:         validateArgs,
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&roots, "roots", nil, "Comma-separated list of import roots (e.g., app,lib)")
	rootCmd.PersistentFlags().StringSliceVar(&groups, "groups", nil, "Comma-separated list of groups below a root (e.g., app/components,app/utils)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (default: "+config.FileName+" found by walking up from PATH)")
	rootCmd.PersistentFlags().BoolVar(&inPlace, "in-place", false, "Modify the file in place instead of printing to stdout")
	rootCmd.PersistentFlags().BoolVar(&check, "check", false, "Report files with unsorted imports and exit with an error instead of writing")
	rootCmd.PersistentFlags().BoolVar(&watch, "watch", false, "Keep running and sort files in place whenever they change")
	rootCmd.PersistentFlags().BoolVar(&verify, "verify", true, "Refuse rewrites that would introduce syntax errors")
	rootCmd.PersistentFlags().IntVar(&jobs, "jobs", 0, "Number of files processed concurrently (default: number of CPUs)")
	rootCmd.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version information")
}

func validateArgs(cmd *cobra.Command, args []string) error {
	// If version flag is set, we don't need file arguments
	if showVersion {
		return nil
	}
	if watch && check {
		return errors.New(errmsg.ErrMsgWatchWithCheck)
	}
	return cobra.MinimumNArgs(1)(cmd, args)
}

// flagList returns the flag value, or nil when the flag was not given so
// environment and config file values apply
func flagList(cmd *cobra.Command, name string, value []string) []string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	if value == nil {
		return []string{}
	}
	return value
}

func newFormatter(cmd *cobra.Command, path string) (formatter.Formatter, error) {
	cfg, err := config.Load(config.LoadOptions{
		Target:     path,
		ConfigPath: configPath,
		Roots:      flagList(cmd, "roots", roots),
		Groups:     flagList(cmd, "groups", groups),
	})
	if err != nil {
		return nil, err
	}

	// Progress output only when stdout is not carrying the sorted file
	if cfg.Source != "" && (inPlace || check || watch) {
		fmt.Fprintf(cmd.OutOrStdout(), errmsg.InfoMsgConfigFile+"\n", cfg.Source)
	}

	return formatter.New(formatter.FormatterConfig{
		FilePath: path, // This will be updated for each file when processing directories
		Sorting:  cfg.Sorting,
		InPlace:  inPlace || watch,
		Check:    check,
		Verify:   verify,
		Jobs:     jobs,
		Out:      cmd.OutOrStdout(),
		ErrOut:   cmd.ErrOrStderr(),
	}), nil
}

func run(cmd *cobra.Command, args []string) error {
	// Handle version flag
	if showVersion {
		fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	formatters := make([]formatter.Formatter, len(args))
	for i, path := range args {
		g, err := newFormatter(cmd, path)
		if err != nil {
			return err
		}
		formatters[i] = g
	}

	var failed error
	for i, path := range args {
		if err := formatters[i].ProcessPath(ctx, path); err != nil {
			if len(args) == 1 && !watch {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), errmsg.InfoMsgErrorProcessing+"\n", path, err)
			failed = err
		}
	}
	if !watch {
		return failed
	}

	eg, ctx := errgroup.WithContext(ctx)
	for i, path := range args {
		i, path := i, path
		eg.Go(func() error {
			return formatters[i].Watch(ctx, path)
		})
	}
	return eg.Wait()
}

// Execute runs the root command. buildVersion is the module version from
// the binary's build info, used when no version was set through ldflags.
func Execute(buildVersion string) error {
	if version.Version == "dev" && buildVersion != "" && buildVersion != "(devel)" {
		version.Version = buildVersion
	}
	return rootCmd.ExecuteContext(context.Background())
}
