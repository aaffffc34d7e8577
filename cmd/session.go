/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/allbin/serialterm"
	"github.com/allbin/serialterm/internal/tui/models"
)

// sessionCmd represents the session command
var sessionCmd = &cobra.Command{
	Use:     "session <port>",
	Aliases: []string{"connect"},
	Short:   "Open an interactive terminal session on a serial port",
	Long: `Open an interactive terminal session on a serial port.

Everything the device sends is shown as it arrives and kept in a buffer
for the lifetime of the program. Keys:
  i        insert mode, Enter sends (Tab toggles ASCII/HEX)
  c        clear the buffer and the screen
  s        save the buffer (files ending in .bin are written as binary)
  d        toggle clearing the buffer after a successful save
  /        search the buffer with a regular expression
  r        show the last search results
  x / o    close or reopen the session
  q        quit

The terminal is owned by the interface, so logs are only written when
--log-file (or log.file) is set.

Example usage:
  serialterm session /dev/ttyUSB0
  serialterm session /dev/ttyUSB0 --baud 9600
  serialterm session /dev/ttyACM0 --log-file serialterm.log --log-level debug`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		syncWrites, _ := cmd.Flags().GetBool("sync-writes")

		var opts []serial.Option
		if syncWrites {
			opts = append(opts, serial.WithSyncWrite())
		}
		return runSessionTUI(args[0], opts...)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)

	sessionCmd.Flags().Bool("sync-writes", false, "Enable synchronous writes (O_SYNC) for guaranteed transmission")
}

func runSessionTUI(portPath string, opts ...serial.Option) error {
	log := logger
	if cfg.Log.File == "" {
		log = zap.NewNop()
	}

	h := newHandler(log, opts...)
	m := models.NewSessionModel(h, portPath, uint(cfg.Serial.Baud))

	p := tea.NewProgram(m, tea.WithAltScreen())
	m.SetSender(p.Send)

	log.Info("starting session interface", zap.String("port", portPath), zap.Int("baud", cfg.Serial.Baud))
	_, err := p.Run()
	m.Shutdown()
	if err != nil {
		return fmt.Errorf("failed to run interface: %w", err)
	}
	return nil
}
