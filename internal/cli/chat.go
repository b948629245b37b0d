package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avasquez/canvasagent/pkg/agent"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the Canvas agent from the terminal",
	Long: `Start an interactive console session with the Canvas agent.
Type a question and the agent answers using its Canvas and vector
store tools. Console commands: help, status, exit.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	app, err := loadApp(false)
	if err != nil {
		return err
	}
	defer app.close()

	runner, err := app.buildAgent(app.log.GetZerolog())
	if err != nil {
		return err
	}

	user, err := app.canvas.CheckConnection(cmd.Context())
	if err != nil {
		return fmt.Errorf("canvas connection failed: %w", err)
	}

	console := &console{
		runner: runner,
		in:     cmd.InOrStdin(),
		out:    cmd.OutOrStdout(),
		user:   user.Name,
		model:  app.cfg.Models.Default,
	}
	return console.run(cmd.Context())
}

// queryRunner is the slice of the agent the console needs.
type queryRunner interface {
	Run(ctx context.Context, query string) (*agent.RunResult, error)
}

// console is a line-oriented chat loop over arbitrary reader/writer
// pairs so it can be driven by tests.
type console struct {
	runner queryRunner
	in     io.Reader
	out    io.Writer
	user   string
	model  string

	queries int
}

func (c *console) run(ctx context.Context) error {
	fmt.Fprintf(c.out, "Canvas Agent: connected as %s (model %s)\n", c.user, c.model)
	fmt.Fprintln(c.out, "Type 'help' for commands, 'exit' to quit.")

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if c.handleCommand(line) {
			continue
		}
		if line == "exit" || line == "quit" {
			fmt.Fprintln(c.out, "Bye.")
			return nil
		}

		c.queries++
		result, err := c.runner.Run(ctx, line)
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintln(c.out, result.Answer)
	}
}

// handleCommand processes console commands; it reports whether the
// line was consumed.
func (c *console) handleCommand(line string) bool {
	switch line {
	case "help":
		fmt.Fprintln(c.out, "Commands:")
		fmt.Fprintln(c.out, "  help    show this help")
		fmt.Fprintln(c.out, "  status  show session info")
		fmt.Fprintln(c.out, "  exit    quit the console")
		fmt.Fprintln(c.out, "Anything else is sent to the agent.")
		return true
	case "status":
		fmt.Fprintf(c.out, "User: %s\n", c.user)
		fmt.Fprintf(c.out, "Model: %s\n", c.model)
		fmt.Fprintf(c.out, "Queries this session: %d\n", c.queries)
		return true
	}
	return false
}
