// Package cmd implements the mtrans command line.
package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/mtrans/engine"
	"github.com/gnolang/mtrans/internal/cache"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:              "mtrans [paths...]",
	Short:            "mtrans - translate math expressions into text with rule sets",
	TraverseChildren: true, // Prioritize subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			return
		}
		// Format: mtrans [path1 path2 ...] => behaves like the translate subcommand
		translateCmd.Run(translateCmd, args)
	},
}

func Execute() error {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", engine.DefaultConfigFile, "Configuration file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Time limit for the whole run")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable development logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(astCmd)
	rootCmd.AddCommand(watchCmd)
}

// loadConfig reads the configuration file. A missing file falls back to
// the defaults unless it was named explicitly.
func loadConfig(explicit bool) (engine.Config, error) {
	config, err := engine.LoadConfig(cfgFile)
	if os.IsNotExist(err) && !explicit {
		return engine.DefaultConfig(), nil
	}
	return config, err
}

func loadEngine(cmd *cobra.Command, useCache bool) (*engine.Engine, *cache.Cache[[]engine.Result], error) {
	config, err := loadConfig(cmd.Flags().Changed("config"))
	if err != nil {
		return nil, nil, err
	}

	var opts []engine.Option
	var c *cache.Cache[[]engine.Result]
	if useCache {
		dir := config.CacheDir
		if dir == "" {
			dir = engine.DefaultCacheDir
		}
		c, err = cache.New[[]engine.Result](dir)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, engine.WithCache(c))
	}

	e, err := engine.NewWithConfig(config, opts...)
	if err != nil {
		return nil, nil, err
	}
	return e, c, nil
}
