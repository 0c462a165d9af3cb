package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/mtrans/engine"
	"github.com/gnolang/mtrans/formatter"
)

var (
	exprs      []string
	jsonOutput bool
	outPath    string
	noCache    bool
)

var translateCmd = &cobra.Command{
	Use:   "translate [paths...]",
	Short: "Translate expressions from files or the command line",
	Long: `Translates every non-empty line of the given files, or of the .tex and
.math files below the given directories. Lines starting with % are skipped.
Example) mtrans translate -e '\frac{1}{2}' exercises/`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 && len(exprs) == 0 {
			fmt.Println("error: Please provide file or directory paths, or expressions with -e")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		eng, c, err := loadEngine(cmd, !noCache)
		if err != nil {
			logger.Fatal("Failed to initialize translation engine", zap.Error(err))
		}

		failed, err := runTranslate(ctx, logger, eng, args, exprs, os.Stdout, jsonOutput, outPath)
		if c != nil {
			if err := c.Save(); err != nil {
				logger.Warn("Error saving cache", zap.Error(err))
			}
		}
		if err != nil {
			logger.Error("Error translating", zap.Error(err))
			os.Exit(1)
		}
		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	translateCmd.Flags().StringArrayVarP(&exprs, "expr", "e", nil, "Expression to translate (repeatable)")
	translateCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")
	translateCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	translateCmd.Flags().BoolVar(&noCache, "no-cache", false, "Translate everything, ignoring cached results")
}

// runTranslate translates exprs then paths and prints the results. It
// reports whether any expression failed.
func runTranslate(
	ctx context.Context,
	logger *zap.Logger,
	eng engine.Translator,
	paths []string,
	exprs []string,
	w io.Writer,
	isJSON bool,
	jsonOutput string,
) (bool, error) {
	var inline, fromFiles []engine.Result
	if len(exprs) > 0 {
		sources := make([][]byte, len(exprs))
		for i, e := range exprs {
			sources[i] = []byte(e)
		}
		results, err := engine.ProcessSources(ctx, logger, eng, sources, engine.ProcessSource)
		if err != nil {
			return false, err
		}
		inline = results
	}
	if len(paths) > 0 {
		results, err := engine.ProcessFiles(ctx, logger, eng, paths, engine.ProcessFile)
		if err != nil {
			return false, err
		}
		fromFiles = results
	}

	all := append(append([]engine.Result{}, inline...), fromFiles...)
	failed := false
	for _, r := range all {
		if r.Failed() {
			failed = true
			break
		}
	}

	if isJSON {
		return failed, writeJSON(w, all, jsonOutput)
	}
	printResults(w, inline, false)
	printResults(w, fromFiles, true)
	return failed, nil
}

// printResults writes outputs one per line, prefixed with their location
// when withLocation is set. Failures are rendered by the formatter.
func printResults(w io.Writer, results []engine.Result, withLocation bool) {
	for _, r := range results {
		if r.Failed() {
			expr := formatter.Expression{Filename: r.Filename, Line: r.Line, Source: r.Source}
			fmt.Fprint(w, formatter.GenerateFormattedErrors(expr, r.Errors))
			continue
		}
		if withLocation {
			fmt.Fprintf(w, "%s:%d: %s\n", r.Filename, r.Line, r.Output)
		} else {
			fmt.Fprintln(w, r.Output)
		}
	}
}

func writeJSON(w io.Writer, results []engine.Result, jsonOutput string) error {
	d, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling results to JSON: %w", err)
	}
	if jsonOutput == "" {
		_, err = fmt.Fprintln(w, string(d))
		return err
	}
	if err := os.WriteFile(jsonOutput, d, 0o644); err != nil {
		return fmt.Errorf("error writing JSON output file: %w", err)
	}
	return nil
}
