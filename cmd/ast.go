package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/mtrans"
	"github.com/gnolang/mtrans/formatter"
	"github.com/gnolang/mtrans/internal/diag"
)

var normalizeTree bool

var astCmd = &cobra.Command{
	Use:   "ast <expr>",
	Short: "Print the parsed expression tree",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config, err := loadConfig(cmd.Flags().Changed("config"))
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		if err := runAST(os.Stdout, config.Options, args[0], normalizeTree); err != nil {
			os.Exit(1)
		}
	},
}

func init() {
	astCmd.Flags().BoolVarP(&normalizeTree, "normalize", "n", false, "Normalize literals before printing")
}

func runAST(w io.Writer, opts map[string]any, src string, normalize bool) error {
	n, err := mtrans.Parse(opts, src, normalize)
	if err != nil {
		expr := formatter.Expression{Line: 1, Source: src}
		fmt.Fprint(w, formatter.GenerateFormattedErrors(expr, []*mtrans.Error{diag.As(err)}))
		return err
	}
	fmt.Fprintln(w, n.String())
	return nil
}
