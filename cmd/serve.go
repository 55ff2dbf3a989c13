package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"facereel/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Facereel web server. It exposes a JSON API for registering
people, running library scans in the background, browsing appearance
events and generating highlight playlists.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (0 = from environment)")
	serveCmd.Flags().String("host", "", "Host to bind to (empty = from environment)")
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}

	if port := mustGetInt(cmd, "port"); port != 0 {
		rt.cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		rt.cfg.Web.Host = host
	}

	server := web.NewServer(web.Deps{
		Config:       rt.cfg,
		Store:        rt.store,
		Registry:     rt.registry,
		Detector:     rt.vision,
		Enricher:     rt.enricher,
		Orchestrator: rt.orchestrator(0),
		Logger:       rt.logger,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Facereel on http://%s:%d\n", rt.cfg.Web.Host, rt.cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
