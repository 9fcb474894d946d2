package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/tally/internal/errors"
	"github.com/hpungsan/tally/internal/mcp"
	"github.com/hpungsan/tally/internal/ops"
	"github.com/hpungsan/tally/internal/session"
)

// newCLIApp creates the CLI application with all commands.
// With no subcommand it runs an interactive session.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:    "tally",
		Usage:   "Line-oriented personal task tracker",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, EnvVars: []string{"TALLY_DIR"}, Usage: "Base directory (default: ~/.tally)"},
			&cli.StringFlag{Name: "log-level", EnvVars: []string{"TALLY_LOG_LEVEL"}, Usage: "Override log_level: debug|info|warn|error"},
		},
		Action: withEnv(sessionAction),
		Commands: []*cli.Command{
			runCmd(),
			exportCmd(),
			importCmd(),
			reportCmd(),
			mcpCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func sessionAction(c *cli.Context, e *env) error {
	opts := session.Options{Logger: e.logger}
	if isTerminal(c.App.Reader) {
		opts.Prompt = "> "
	}
	e.logger.Info("session started", "tasks", e.list.Len())
	return session.New(e.interp, opts).Run(c.Context, c.App.Reader, c.App.Writer)
}

// runCmd executes one interpreter command against the persisted list.
func runCmd() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run a single command, e.g. tally run todo Buy milk",
		ArgsUsage: "<command words...>",
		// Command text such as "-1" must reach the interpreter untouched.
		SkipFlagParsing: true,
		Action: withEnv(func(c *cli.Context, e *env) error {
			line := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(line) == "" {
				return outputError(errors.NewInvalidRequest("a command is required, e.g. tally run list"))
			}
			if strings.EqualFold(strings.TrimSpace(line), "help") {
				fmt.Fprintln(c.App.Writer, session.HelpText())
				return nil
			}

			res, err := e.interp.Execute(c.Context, line)
			if err != nil {
				return outputError(err)
			}
			fmt.Fprintln(c.App.Writer, res.Message)
			if res.StorageErr != nil {
				return outputError(res.StorageErr)
			}
			return nil
		}),
	}
}

// exportCmd creates the export command.
func exportCmd() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export tasks to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: <dir>/exports/tasks-<timestamp>.jsonl)"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			output, err := ops.Export(c.Context, e.list.All(), e.cfg, ops.ExportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		}),
	}
}

// importCmd creates the import command.
func importCmd() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import tasks from a JSONL export",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: string(ops.ImportModeAppend), Usage: "append|replace"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			output, err := ops.Import(c.Context, e.list, e.repo, e.cfg, ops.ImportInput{
				Path: c.String("path"),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			if err := outputJSON(c.App.Writer, output); err != nil {
				return err
			}
			if len(output.Errors) > 0 {
				return cli.Exit(fmt.Sprintf("import rejected: %d invalid line(s)", len(output.Errors)), 1)
			}
			return nil
		}),
	}
}

// reportCmd creates the report command.
func reportCmd() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Print the task list as a Markdown checklist",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "html", Usage: "Render HTML instead of Markdown"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Report heading"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			input := ops.ReportInput{Format: ops.ReportMarkdown, Title: c.String("title")}
			if c.Bool("html") {
				input.Format = ops.ReportHTML
			}
			output, err := ops.Report(e.list.All(), input)
			if err != nil {
				return outputError(err)
			}
			_, err = io.WriteString(c.App.Writer, output.Content)
			return err
		}),
	}
}

// mcpCmd serves the MCP tools over stdio.
func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve tally tools over the Model Context Protocol (stdio)",
		Action: withEnv(func(c *cli.Context, e *env) error {
			if unknown := mcp.ValidateDisabledTools(e.cfg.DisabledTools); len(unknown) > 0 {
				e.logger.Warn("unknown tools in disabled_tools", "tools", unknown, "known", mcp.AllToolNames())
			}
			e.logger.Info("mcp server starting", "tasks", e.list.Len())
			h := mcp.NewHandlers(e.interp, e.repo, e.cfg, e.logger)
			return mcp.Run(h, e.cfg, Version)
		}),
	}
}

// Helper functions

// outputJSON writes v to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if tErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", tErr.Code, tErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
