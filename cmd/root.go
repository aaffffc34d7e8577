/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/allbin/serialterm"
	"github.com/allbin/serialterm/internal/command"
	"github.com/allbin/serialterm/internal/config"
	"github.com/allbin/serialterm/internal/logging"
	"github.com/allbin/serialterm/internal/session"
)

var (
	v       = viper.New()
	cfgFile string
	cfg     config.Config
	logger  = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "serialterm",
	Short: "Serial terminal sessions from the command line",
	Long: `serialterm opens a session on a serial port, forwards everything the
device sends, queues what you type for transmission and keeps the received
bytes so they can be searched and saved.

Settings are read from $HOME/.config/serialterm/config.yaml (or --config)
and can be overridden with SERIALTERM_* environment variables, e.g.
SERIALTERM_SERIAL_BAUD=9600.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := readConfig(); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load(v)
		if err != nil {
			return err
		}

		logger, err = logging.New(cfg.Log)
		if err != nil {
			return err
		}
		logger.Debug("configuration loaded", zap.String("file", v.ConfigFileUsed()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	config.Setup(v)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $HOME/.config/serialterm/config.yaml)")
	rootCmd.PersistentFlags().IntP("baud", "b", 115200, "Baud rate")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to this file instead of stderr")

	_ = v.BindPFlag("serial.baud", rootCmd.PersistentFlags().Lookup("baud"))
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("log.file", rootCmd.PersistentFlags().Lookup("log-file"))
}

// readConfig loads the config file. A missing default file is not an error.
func readConfig() error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "serialterm"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// newHandler builds the session state and command handler from the loaded configuration.
func newHandler(log *zap.Logger, opts ...serial.Option) *command.Handler {
	state := session.New(
		session.WithOpener(session.SerialOpener(opts...)),
		session.WithLogger(log),
		session.WithReadTimeout(cfg.Serial.ReadTimeout),
		session.WithScratchSize(cfg.Session.ScratchSize),
	)
	return command.NewHandler(state,
		command.WithLogger(log),
		command.WithErrorDetail(cfg.Errors.Detail),
		command.WithSaveDir(cfg.Save.Dir),
	)
}
