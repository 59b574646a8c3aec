// Package cli implements the litegpt command line: serve, ask and version.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"litegpt/config"
	"litegpt/internal/logging"
	"litegpt/internal/version"
)

// flagBindings maps flags to the configuration keys they override. Flags a
// subcommand does not define are skipped.
var flagBindings = map[string]string{
	"base-url":  "backend.base_url",
	"model":     "backend.model",
	"log-level": "logging.level",
	"port":      "server.port",
}

// rootState carries what PersistentPreRunE prepared for subcommands.
type rootState struct {
	v      *viper.Viper
	config *config.Config
	logger *slog.Logger
}

// NewRootCommand builds the litegpt command tree.
func NewRootCommand() *cobra.Command {
	state := &rootState{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "litegpt",
		Version:       version.Version,
		Short:         "A small chat gateway in front of a local Ollama model",
		Long:          `LiteGPT answers introductions locally and forwards everything else to a local Ollama model, stripping hallucinated dialogue turns from the reply.`,
		SilenceUsage:  true, // Don't show usage after errors
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "version", "help", "completion":
				return nil
			}
			return state.load(cmd)
		},
	}
	rootCmd.SetVersionTemplate(version.Info() + "\n")

	rootCmd.PersistentFlags().String("config", "", "config file (default is config/config.yaml or config.yaml)")
	rootCmd.PersistentFlags().String("base-url", "", "Ollama base URL (overrides OLLAMA_BASE_URL)")
	rootCmd.PersistentFlags().String("model", "", "Ollama model name (overrides OLLAMA_MODEL)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newServeCommand(state))
	rootCmd.AddCommand(newAskCommand(state))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}

// load reads the configuration, applies flag overrides and installs the logger.
func (s *rootState) load(cmd *cobra.Command) error {
	for flagName, key := range flagBindings {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := s.v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flagName, err)
		}
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	s.applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.config = cfg

	s.logger = logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: logging.Format(cfg.Logging.Format),
		Output: cmd.ErrOrStderr(),
	})
	slog.SetDefault(s.logger)
	return nil
}

// applyOverrides copies explicitly set flags over the loaded configuration.
func (s *rootState) applyOverrides(cfg *config.Config) {
	if s.v.IsSet("backend.base_url") {
		cfg.Backend.BaseURL = s.v.GetString("backend.base_url")
	}
	if s.v.IsSet("backend.model") {
		cfg.Backend.Model = s.v.GetString("backend.model")
	}
	if s.v.IsSet("logging.level") {
		cfg.Logging.Level = s.v.GetString("logging.level")
	}
	if s.v.IsSet("server.port") {
		cfg.Server.Port = s.v.GetString("server.port")
	}
}
