// Package commands implements the CLI commands for agentmd.
package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/agentmd/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "agentmd",
	Short: "Convert HTML pages into compact Markdown for LLM agents",
	Long: `agentmd turns HTML into clean Markdown sized for LLM context windows.

It strips page chrome (navigation, sidebars, cookie banners), converts the
remaining content with an extensible rule table, removes repeated blocks and
reports a token estimate for the result.

Examples:
  # Convert a local file
  agentmd convert page.html

  # Convert a URL with boilerplate extraction and frontmatter
  agentmd convert https://example.com/post --extract --frontmatter

  # See how much a page shrinks
  agentmd audit https://example.com/post

  # Serve a directory, answering Accept: text/markdown with Markdown
  agentmd serve --dir ./public`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		opts := logger.Options{
			Debug: viper.GetBool("debug"),
			Quiet: viper.GetBool("quiet"),
			JSON:  viper.GetBool("log_json"),
		}
		if err := logger.ParseLevel(viper.GetString("log_level"), &opts); err != nil {
			return err
		}
		logger.Init(opts)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.agentmd.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "only log errors")
	flags.Bool("log-json", false, "log as JSON")
	flags.String("log-level", "", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = viper.BindPFlag("log_json", flags.Lookup("log-json"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".agentmd")
		viper.SetConfigType("yaml")
	}

	// Environment variables: AGENTMD_HEADING_STYLE, AGENTMD_EXTRACT, ...
	viper.SetEnvPrefix("AGENTMD")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	if err := viper.ReadInConfig(); err == nil {
		logger.Debug("using config file", "path", viper.ConfigFileUsed())
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
