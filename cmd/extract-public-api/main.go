package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"citools/internal/clierr"
	"citools/internal/config"
	"citools/internal/extractor"
	"citools/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const usage = "Usage: extract-public-api <input_api.json> <output_public_api.json>"

var (
	configPath string
	verbose    bool

	logger *zap.Logger
	cfg    *config.Config
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
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
		Use:   "extract-public-api <input_api.json> <output_public_api.json>",
		Short: "Extract the public API of public types from a SourceKitten dump",
		Long: `Walks a SourceKitten structure dump and writes, for every public class,
struct and enum, the public functions declared inside it. The report is a
JSON array of {"className", "apiFunctions"} objects.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
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
		RunE: runExtract,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the YAML config file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return clierr.Usage(fmt.Sprintf("%v\n%s", err, usage))
	})
	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	inputPath, outputPath := args[0], args[1]

	ext := extractor.New(cfg.ExtractorRules(), logger)
	report, err := ext.ExtractFile(inputPath)
	if err != nil {
		return extractError(err)
	}
	logger.Debug("Extracted public API", zap.String("input", inputPath), zap.Int("types", len(report)))

	if err := report.Save(outputPath); err != nil {
		return clierr.Wrap(clierr.CodeIO, "failed to write report", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Extracted public API. Output written to %s\n", outputPath)
	return nil
}

// extractError classifies an ExtractFile failure. Failures to read the
// input are I/O errors; anything else means the dump itself is malformed.
func extractError(err error) *clierr.Error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return clierr.Wrap(clierr.CodeIO, "failed to read symbol dump", err)
	}
	return clierr.Wrap(clierr.CodeParse, "failed to extract public API", err)
}
