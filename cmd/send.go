/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/allbin/serialterm/internal/command"
	"github.com/allbin/serialterm/internal/session"
	"github.com/allbin/serialterm/internal/tui/components"
)

var errSessionNotReady = errors.New("session did not start in time")

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [data] <port>",
	Short: "Send data to a serial port and show the reply",
	Long: `Open a short session, queue data for transmission and print whatever the
device sends back until --wait has passed.

Data can be provided as:
- Command line argument: send "Hello World" /dev/ttyUSB0
- From stdin (pipe): echo "test data" | serialterm send /dev/ttyUSB0
- Interactive mode: serialterm send /dev/ttyUSB0 (prompts for input)

Example usage:
  serialterm send "Hello World" /dev/ttyUSB0
  serialterm send "AT+GMR" /dev/ttyUSB0 --newline --wait 1s
  serialterm send "0D 0A" /dev/ttyUSB0 --hex
  echo "test" | serialterm send /dev/ttyUSB0`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data string
		var portPath string

		if len(args) == 1 {
			portPath = args[0]
			stat, err := os.Stdin.Stat()
			if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
				data = promptForData()
			} else {
				stdinData, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				data = strings.TrimRight(string(stdinData), "\r\n")
			}
		} else {
			data = args[0]
			portPath = args[1]
		}

		addNewline, _ := cmd.Flags().GetBool("newline")
		hexMode, _ := cmd.Flags().GetBool("hex")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		wait, _ := cmd.Flags().GetDuration("wait")

		payload := []byte(data)
		if hexMode {
			decoded, err := components.ParseHex(data)
			if err != nil {
				return err
			}
			payload = decoded
		} else if addNewline {
			payload = append(payload, '\n')
		}

		infoStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true)
		successStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("40")).
			Bold(true)

		fmt.Fprintf(os.Stderr, "%s Sending %d bytes to %s (%s)\n",
			infoStyle.Render("⚡"), len(payload), portPath, components.PrintableASCII(payload))

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout+wait)
		defer cancel()

		if err := runSend(ctx, newHandler(logger), portPath, uint(cfg.Serial.Baud), payload, wait, cmd.OutOrStdout()); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "\n%s Done\n", successStyle.Render("✓"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().BoolP("newline", "n", false, "Add newline character to the end of data")
	sendCmd.Flags().BoolP("hex", "x", false, "Interpret data as hexadecimal (e.g., '48656c6c6f' for 'Hello')")
	sendCmd.Flags().DurationP("timeout", "t", 5*time.Second, "Timeout for the session to start")
	sendCmd.Flags().DurationP("wait", "w", 500*time.Millisecond, "How long to keep reading the reply")
}

func promptForData() string {
	promptStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99"))

	fmt.Print(promptStyle.Render("Enter data to send: "))

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}

// runSend opens a session, queues payload once the session is running and
// copies everything received to out until wait has passed.
func runSend(ctx context.Context, h *command.Handler, portPath string, baudRate uint, payload []byte, wait time.Duration, out io.Writer) error {
	done := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(done)
		return h.Open(gctx, portPath, baudRate, session.WriterSink(out))
	})

	g.Go(func() error {
		running, err := waitRunning(gctx, h, done)
		if err != nil || !running {
			return err
		}
		if err := h.Write(string(payload)); err != nil {
			return err
		}

		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-done:
			return nil
		case <-gctx.Done():
		}

		if err := h.Close(); err != nil && !command.IsKind(err, command.KindNotRunning) {
			return err
		}
		return nil
	})

	return g.Wait()
}

// waitRunning polls until h reports an active session. It reports false
// when Open returned first; Open's own error is what the caller surfaces.
func waitRunning(ctx context.Context, h *command.Handler, done <-chan struct{}) (bool, error) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if _, ok := h.Active(); ok {
			return true, nil
		}
		select {
		case <-ticker.C:
		case <-done:
			return false, nil
		case <-ctx.Done():
			return false, errSessionNotReady
		}
	}
}
