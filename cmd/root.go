package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Bitlatte/folio/internal/config"
	"github.com/Bitlatte/folio/internal/logger"
)

var cfgFile string
var appConfig config.Config
var appLog logger.Logger = logger.NewNop()

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "folio - a small server-rendered blog",
	Long: `folio serves a list of blog posts and a detail page per post slug.
Posts come from the built-in seed, a YAML file, a directory of Markdown
files with frontmatter, or Redis.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = appLog.Sync()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./folio.yaml)")
}

func initializeConfig(_ *cobra.Command) error {
	cfg, used, err := config.Load(viper.New(), cfgFile)
	if err != nil {
		return err
	}
	appConfig = cfg

	l, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	appLog = l

	if used != "" {
		appLog.Debug("Using config file", logger.String("file", used))
	} else {
		appLog.Debug("No config file found, using defaults and environment")
	}
	return nil
}
