package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show gateway and Canvas connection status",
	Long:  `Show whether the gateway server is running and verify Canvas API access.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	pidFile := getPIDFilePath()

	if !isRunning(pidFile) {
		fmt.Println("Gateway: stopped")
	} else {
		data, err := os.ReadFile(pidFile)
		if err != nil {
			return fmt.Errorf("failed to read PID file: %w", err)
		}

		var pid int
		if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
			return fmt.Errorf("invalid PID file: %w", err)
		}

		fmt.Println("Gateway: running")
		fmt.Printf("PID: %d\n", pid)
		if fileInfo, err := os.Stat(pidFile); err == nil {
			fmt.Printf("Uptime: %s\n", formatDuration(time.Since(fileInfo.ModTime())))
		}
	}

	app, err := loadApp(false)
	if err != nil {
		return err
	}
	defer app.close()

	user, err := app.canvas.CheckConnection(cmd.Context())
	if err != nil {
		fmt.Printf("Canvas: unreachable (%v)\n", err)
		return nil
	}

	fmt.Printf("Canvas: connected as %s\n", user.Name)
	fmt.Printf("Model: %s\n", app.cfg.Models.Default)
	return nil
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
