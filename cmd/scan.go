package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"facereel/internal/scan"
)

var scanCmd = &cobra.Command{
	Use:   "scan [directory]",
	Short: "Scan a video library for registered people",
	Long: `Scan every video under the given directory for registered people.
Videos that were already scanned are skipped unless --force is set.
Results are saved after every video, so an interrupted scan keeps its
progress and can be resumed by running the command again.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().Bool("force", false, "Rescan videos that already have results")
	scanCmd.Flags().Int("workers", 0, "Number of parallel video workers (0 = auto)")
	scanCmd.Flags().Float64("interval", 0, "Seconds between sampled frames (0 = configured default)")
}

func runScan(cmd *cobra.Command, args []string) error {
	root := args[0]
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a readable directory", root)
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	if len(rt.registry.Names()) == 0 {
		return fmt.Errorf("no people registered yet, use 'facereel register' first")
	}

	if interval := mustGetFloat64(cmd, "interval"); interval > 0 {
		rt.cfg.Tuning.Scan.IntervalSec = interval
	}
	orchestrator := rt.orchestrator(mustGetInt(cmd, "workers"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nCancelling, letting in-flight videos finish...")
		cancel()
	}()

	summary, err := orchestrator.Run(ctx, root, scan.Options{
		Force:           mustGetBool(cmd, "force"),
		ShowProgressBar: true,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Scan finished: %d videos, %d scanned, %d skipped, %d failed\n",
		summary.Total, summary.Scanned, summary.Skipped, summary.Failed)
	if summary.Cancelled {
		fmt.Println("Scan was cancelled; run again to pick up where it left off.")
	}
	return nil
}
