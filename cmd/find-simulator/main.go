package main

import (
	"fmt"
	"io"
	"os"

	"citools/internal/clierr"
	"citools/internal/config"
	"citools/internal/logging"
	"citools/internal/simulator"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const usage = `Usage: find-simulator <platform>
Example: xcrun simctl list devices available -j | find-simulator iOS`

var (
	configPath string
	verbose    bool

	logger *zap.Logger
	cfg    *config.Config
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err != nil {
		fmt.Fprintln(stderr, clierr.Message(err))
	}
	return clierr.ExitCode(err)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find-simulator <platform>",
		Short: "Print the UDID of the first available simulator for a platform",
		Long: `Reads the JSON device list printed by 'xcrun simctl list devices -j' from
stdin and prints the UDID of the first available device whose runtime
belongs to the given platform (iOS, watchOS, tvOS, ...).`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return clierr.Usage(usage)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig(configPath, cmd.Flags().Changed("config"))
			if err != nil {
				return clierr.Wrap(clierr.CodeInvalid, "failed to load config", err)
			}
			logger, err = logging.New(cfg.Log.Level, verbose)
			if err != nil {
				return clierr.Wrap(clierr.CodeInvalid, "failed to initialize logger", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: runFind,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the YAML config file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return clierr.Usage(fmt.Sprintf("%v\n%s", err, usage))
	})
	return cmd
}

func runFind(cmd *cobra.Command, args []string) error {
	platform := args[0]

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return clierr.Wrap(clierr.CodeIO, "failed to read device list", err)
	}
	catalog, err := simulator.ParseCatalog(data)
	if err != nil {
		return clierr.Wrap(clierr.CodeParse, "failed to parse device list", err)
	}
	logger.Debug("Loaded device list", zap.Int("runtimes", len(catalog.Runtimes)))

	finder := simulator.NewFinder(cfg.Simulator.RuntimePrefix, logger)
	udid, ok, err := finder.Find(catalog, platform)
	if err != nil {
		return clierr.Wrap(clierr.CodeParse, "failed to parse device list", err)
	}
	if !ok {
		return clierr.NotFound("No available simulator found for platform: " + platform)
	}

	fmt.Fprintln(cmd.OutOrStdout(), udid)
	return nil
}
