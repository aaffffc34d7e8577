/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/allbin/serialterm/internal/command"
	"github.com/allbin/serialterm/internal/session"
)

// recordCmd represents the record command
var recordCmd = &cobra.Command{
	Use:   "record <port> <output-file>",
	Short: "Record a serial session to a file",
	Long: `Run a session without the interface and save everything received when
it ends (Ctrl+C or SIGTERM).

The buffer is written in one go when the session stops, replacing any
existing file. Files ending in .bin are written as binary.

Example usage:
  serialterm record /dev/ttyUSB0 data.log
  serialterm record /dev/ttyUSB0 output.txt --baud 9600
  serialterm record /dev/ttyUSB0 capture.bin --console`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		showConsole, _ := cmd.Flags().GetBool("console")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var echo io.Writer
		if showConsole {
			echo = os.Stdout
		}

		fmt.Fprintf(os.Stderr, "Recording %s to %s\n", args[0], args[1])
		fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop\n\n")

		start := time.Now()
		usage, err := runRecord(ctx, newHandler(logger), args[0], uint(cfg.Serial.Baud), args[1], echo)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "\nRecording complete: %d bytes written in %v\n", usage, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)

	recordCmd.Flags().BoolP("console", "c", false, "Display incoming data on console while recording")
}

// runRecord runs a session on portPath until ctx is done or the session
// ends on its own, then saves the buffer to outputPath and clears it.
// It returns the number of bytes saved. Received bytes are copied to echo
// when it is non-nil.
func runRecord(ctx context.Context, h *command.Handler, portPath string, baudRate uint, outputPath string, echo io.Writer) (uint32, error) {
	sink := session.Discard()
	if echo != nil {
		sink = session.WriterSink(echo)
	}

	// Close is the normal stop path; cancel covers a signal that lands
	// before the session is registered.
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()

	done := make(chan struct{})
	var g errgroup.Group

	g.Go(func() error {
		defer close(done)
		return h.Open(loopCtx, portPath, baudRate, sink)
	})

	g.Go(func() error {
		select {
		case <-done:
			return nil
		case <-ctx.Done():
		}
		logger.Info("stopping session", zap.String("port", portPath))
		err := h.Close()
		cancel()
		if err != nil && !command.IsKind(err, command.KindNotRunning) {
			return err
		}
		return nil
	})

	runErr := g.Wait()
	if command.IsKind(runErr, command.KindOpenFailed) {
		return 0, runErr
	}

	usage, err := h.Usage()
	if err != nil {
		return 0, err
	}
	binaryMode := strings.EqualFold(filepath.Ext(outputPath), ".bin")
	if _, err := h.Save(outputPath, binaryMode, true); err != nil {
		return 0, err
	}
	return usage, runErr
}
