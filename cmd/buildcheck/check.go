package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"buildcheck/internal/diag"
	"buildcheck/internal/diagfmt"
	"buildcheck/internal/driver"
	"buildcheck/internal/schema"
	"buildcheck/internal/source"
	"buildcheck/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file|directory>",
	Short: "Check project files for expression, markup and semantic problems",
	Long:  `Check a single project file, or every project file under a directory, against the builtin and user-provided schemas`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|sarif)")
	checkCmd.Flags().StringSlice("schema", nil, "additional TOML schema file (repeatable)")
	checkCmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Bool("cache", false, "enable the persistent result cache")
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	schemaPaths, err := cmd.Flags().GetStringSlice("schema")
	if err != nil {
		return fmt.Errorf("failed to get schema flag: %w", err)
	}
	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if noWarnings && warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return fmt.Errorf("failed to get cache flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	colorMode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}

	providers, err := loadSchemas(schemaPaths)
	if err != nil {
		return err
	}

	opts := driver.Options{
		Schemas:        providers,
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
	}
	if !quiet {
		opts.Log = stderrLogger{}
	}
	if useCache {
		cache, err := driver.OpenDiskCache("buildcheck")
		if err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
		opts.Cache = cache
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	var fileSet *source.FileSet
	var results []driver.Result
	if info.IsDir() {
		fileSet, results, err = driver.CheckDir(cmd.Context(), path, opts)
	} else {
		var res driver.Result
		fileSet, res, err = driver.CheckFile(cmd.Context(), path, opts)
		results = []driver.Result{res}
	}
	if err != nil {
		return err
	}

	merged := mergeResults(results, noWarnings, warningsAsErrors)

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	out := cmd.OutOrStdout()
	switch format {
	case "pretty":
		useColor := colorMode == "on" || colorMode == "auto" && isTerminal(os.Stdout)
		diagfmt.Pretty(out, merged, fileSet, diagfmt.PrettyOpts{
			Color:     useColor,
			PathMode:  pathMode,
			ShowNotes: withNotes,
		})
	case "json":
		if err := diagfmt.JSON(out, merged, fileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
			IncludeProps:     true,
		}); err != nil {
			return err
		}
	case "sarif":
		if err := diagfmt.Sarif(out, merged, fileSet, diagfmt.SarifRunMeta{
			ToolName:       "buildcheck",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args,
		}); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if merged.HasErrors() {
		os.Exit(1)
	}
	return nil
}

// stderrLogger surfaces contained validator faults on stderr so they are
// not lost when the diagnostic stream goes to stdout.
type stderrLogger struct{}

func (stderrLogger) Logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// loadSchemas builds the provider chain: user schemas in flag order,
// then the builtin schema. The per-document inferred schema is appended
// by the validator itself.
func loadSchemas(paths []string) ([]schema.Provider, error) {
	providers := make([]schema.Provider, 0, len(paths)+1)
	for _, p := range paths {
		sp, err := schema.LoadUserSchema(p)
		if err != nil {
			return nil, fmt.Errorf("failed to load schema %s: %w", p, err)
		}
		providers = append(providers, sp)
	}
	providers = append(providers, schema.Builtin())
	return providers, nil
}

// mergeResults folds per-file bags into one output bag, applying the
// warning policy on the way.
func mergeResults(results []driver.Result, noWarnings, warningsAsErrors bool) *diag.Bag {
	total := 0
	for _, r := range results {
		if r.Bag != nil {
			total += r.Bag.Len()
		}
	}
	merged := diag.NewBag(total)
	for _, r := range results {
		if r.Bag == nil {
			continue
		}
		for _, d := range r.Bag.Items() {
			if d.Severity == diag.SevWarning {
				if noWarnings {
					continue
				}
				if warningsAsErrors {
					d.Severity = diag.SevError
				}
			}
			merged.Add(d)
		}
	}
	merged.Sort()
	return merged
}
