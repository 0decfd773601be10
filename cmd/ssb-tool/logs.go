package main

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssbops/ssb-build-server/pkg/monitor"
)

func newLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Scan or tail a build server log file",
		Long: `Scan a log file for entries at or above a severity level, optionally
filtered by a regular expression. With --follow the file is polled for new
entries until interrupted.`,
		RunE: runLogs,
	}

	f := cmd.Flags()
	f.String("file", "ssb-build-server.log", "Log file to read")
	f.String("level", "", "Minimum level to show (debug, info, warn, error)")
	f.String("grep", "", "Only show lines matching this regular expression")
	f.Int("tail", 0, "Only show the last N matching lines")
	f.Bool("follow", false, "Keep watching the file for new lines")
	f.Duration("interval", time.Second, "Poll interval when following")

	return cmd
}

func runLogs(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	level, _ := cmd.Flags().GetString("level")
	grep, _ := cmd.Flags().GetString("grep")
	tail, _ := cmd.Flags().GetInt("tail")
	follow, _ := cmd.Flags().GetBool("follow")
	interval, _ := cmd.Flags().GetDuration("interval")

	opts := monitor.Options{Level: level, Tail: tail}
	if grep != "" {
		pattern, err := regexp.Compile(grep)
		if err != nil {
			return fmt.Errorf("invalid --grep pattern: %w", err)
		}
		opts.Pattern = pattern
	}

	lines, err := monitor.Scan(file, opts)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}

	if !follow {
		return nil
	}

	out := make(chan string)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for line := range out {
			fmt.Println(line)
		}
	}()

	err = monitor.Follow(cmd.Context(), file, opts, interval, out)
	close(out)
	<-done
	if err != nil && !errors.Is(err, cmd.Context().Err()) {
		return err
	}
	return nil
}
