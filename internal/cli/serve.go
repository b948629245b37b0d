package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/openai/openai-go"
	"github.com/spf13/cobra"

	"github.com/avasquez/canvasagent/pkg/canvas"
	"github.com/avasquez/canvasagent/pkg/downloader"
	"github.com/avasquez/canvasagent/pkg/gateway"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the WebSocket gateway server",
	Long: `Start the WebSocket gateway server. Clients authenticate with the
configured password (plus TOTP unless disabled) and then chat with the
agent or trigger course material downloads.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	pidFile := getPIDFilePath()
	if isRunning(pidFile) {
		return fmt.Errorf("server is already running (PID file: %s)", pidFile)
	}

	app, err := loadApp(true)
	if err != nil {
		return err
	}
	defer app.close()

	log := app.log.GetZerolog()
	cfg := app.cfg

	var oc *openai.Client
	if c, ok := app.openaiClient(); ok {
		oc = &c
	}
	upload, err := downloader.New(app.canvas, oc, log)
	if err != nil {
		return err
	}

	server, err := gateway.NewServer(gateway.Config{
		Host:            cfg.Gateway.Host,
		Port:            cfg.Gateway.Port,
		Mode:            gateway.Mode(cfg.Gateway.Mode),
		Password:        cfg.Gateway.Password,
		TOTPSecret:      cfg.Gateway.TOTPSecret,
		TOTPDisabled:    cfg.Gateway.TOTPDisabled,
		SessionTTL:      time.Duration(cfg.Gateway.SessionTTLMinutes) * time.Minute,
		MaxConnDuration: time.Duration(cfg.Gateway.MaxConnMinutes) * time.Minute,
		TLSCertFile:     cfg.Gateway.TLSCertFile,
		TLSKeyFile:      cfg.Gateway.TLSKeyFile,
		BuildAgent: func(ctx context.Context) (gateway.AgentRunner, error) {
			return app.buildAgent(log)
		},
		FetchCourses: func(ctx context.Context) ([]canvas.Course, error) {
			return app.canvas.ListCourses(ctx, "active")
		},
		RunDownload: func(ctx context.Context, opts downloader.Options) (*downloader.Report, error) {
			opts.Root = cfg.Download.Root
			opts.UploadToVectorStore = cfg.Download.UploadToVectorStore
			return upload.Run(ctx, opts)
		},
		Logger: log,
	})
	if err != nil {
		return err
	}

	if err := writePIDFile(pidFile); err != nil {
		return err
	}
	defer os.Remove(pidFile)

	// Graceful shutdown on SIGINT/SIGTERM.
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-done
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		if err := server.Stop(); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	return server.Start()
}

func getPIDFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/canvasagent.pid"
	}
	return filepath.Join(home, ".canvasagent", "canvasagent.pid")
}

func writePIDFile(pidFile string) error {
	if err := os.MkdirAll(filepath.Dir(pidFile), 0755); err != nil {
		return fmt.Errorf("failed to create PID directory: %w", err)
	}
	return os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644)
}

func isRunning(pidFile string) bool {
	if _, err := os.Stat(pidFile); os.IsNotExist(err) {
		return false
	}

	data, err := os.ReadFile(pidFile)
	if err != nil {
		return false
	}

	var pid int
	_, err = fmt.Sscanf(string(data), "%d", &pid)
	if err != nil {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// On Unix, FindProcess always succeeds; signal 0 probes liveness.
	err = process.Signal(syscall.Signal(0))
	return err == nil
}
