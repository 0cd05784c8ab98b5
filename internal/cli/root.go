// Package cli provides the llmbase command-line interface.
package cli

import (
	"os"

	"github.com/llmbase/llmbase/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagVerbose bool
	flagQuiet   bool
	flagGlobal  bool
	flagLocal   bool
	flagFile    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "llmbase",
	Short: "Configuration and content tooling for LLM providers",
	Long: `llmbase is a command-line scaffold for tools that wrap LLM providers.
It manages layered configuration (global, local, and named-file scopes),
provider credential profiles, and content conversion commands that turn
clipboard text and web pages into markdown documents.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		_, err := config.Initialize(scopeArgs())
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "only show errors")
	rootCmd.PersistentFlags().BoolVar(&flagGlobal, "global", false, "operate on the global configuration only")
	rootCmd.PersistentFlags().BoolVar(&flagLocal, "local", false, "operate on the local configuration (default)")
	rootCmd.PersistentFlags().StringVar(&flagFile, "file", "", "operate on a named configuration file (wins over --global/--local)")
	rootCmd.MarkFlagsMutuallyExclusive("global", "local")
}

// scopeArgs translates the persistent scope flags into configuration
// arguments.
func scopeArgs() config.Args {
	args := config.Args{
		FilePath: flagFile,
		Verbose:  flagVerbose,
		Quiet:    flagQuiet,
	}
	switch {
	case flagFile != "":
		args.Scope = config.ScopeFile
	case flagGlobal:
		args.Scope = config.ScopeGlobal
	default:
		args.Scope = config.ScopeLocal
	}
	return args
}

// writeScope returns the scope that mutating commands should target.
func writeScope() config.Scope {
	switch {
	case flagFile != "":
		return config.ScopeFile
	case flagGlobal:
		return config.ScopeGlobal
	default:
		return config.ScopeLocal
	}
}

// setupLogging configures the console logger on stderr. Verbose wins
// over quiet when both are set.
func setupLogging() {
	level := zerolog.InfoLevel
	if flagQuiet {
		level = zerolog.ErrorLevel
	}
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
