package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/holocron/internal/errors"
	"github.com/hpungsan/holocron/internal/ops"
	"github.com/hpungsan/holocron/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(deps ops.Deps) *cli.App {
	app := &cli.App{
		Name:    "holocron",
		Usage:   "Local planet cache",
		Version: Version,
		Commands: []*cli.Command{
			initCmd(deps),
			fetchPageCmd(deps),
			listCmd(deps),
			getCmd(deps),
			enrichCmd(deps),
			cursorCmd(deps),
			destroyCmd(deps),
			serveCmd(deps),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// initCmd creates the init command.
func initCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Open the cache and print its planets, loading page one if it is empty",
		Action: func(c *cli.Context) error {
			output, err := ops.Initialize(c.Context, deps)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// fetchPageCmd creates the fetch-page command.
func fetchPageCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:  "fetch-page",
		Usage: "Fetch the page at the stored cursor and append it to the cache",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Value: 1, Usage: "Number of pages to fetch"},
		},
		Action: func(c *cli.Context) error {
			count := c.Int("count")
			if count < 1 {
				return outputError(errors.NewInvalidRequest("count must be at least 1"))
			}

			outputs := make([]*ops.FetchPageOutput, 0, count)
			for range count {
				output, err := ops.FetchPage(c.Context, deps)
				if err != nil {
					return outputError(err)
				}
				outputs = append(outputs, output)
			}

			if count == 1 {
				return outputJSON(c.App.Writer, outputs[0])
			}
			return outputJSON(c.App.Writer, outputs)
		},
	}
}

// listCmd creates the list command.
func listCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List cached planets without touching the network",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "summary", Aliases: []string{"s"}, Usage: "Print summaries without reference lists"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, deps)
			if err != nil {
				return outputError(err)
			}
			if !c.Bool("summary") {
				return outputJSON(c.App.Writer, output)
			}

			summaries := make([]any, 0, len(output.Items))
			for i := range output.Items {
				summaries = append(summaries, output.Items[i].ToSummary())
			}
			return outputJSON(c.App.Writer, map[string]any{"items": summaries, "total": output.Total})
		},
	}
}

// getCmd creates the get command.
func getCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get one cached planet",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := parseIDArg(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Get(c.Context, deps, ops.GetInput{ID: id})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// enrichCmd creates the enrich command.
func enrichCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:      "enrich",
		Usage:     "Resolve resident names for a cached planet",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := parseIDArg(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Enrich(c.Context, deps, ops.EnrichInput{ID: id})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// cursorCmd creates the cursor command.
func cursorCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:  "cursor",
		Usage: "Show the stored next-page cursor",
		Action: func(c *cli.Context) error {
			output, err := ops.GetCursor(c.Context, deps)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// destroyCmd creates the destroy command.
func destroyCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:  "destroy",
		Usage: "Delete the local cache",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm deletion"},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("yes") {
				return outputError(errors.NewInvalidRequest("destroy requires --yes"))
			}
			output, err := ops.Destroy(c.Context, deps)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(deps ops.Deps) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("invalid port: %d", port)))
			}
			srv, err := web.NewServer(deps, Version, c.String("bind"), port)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(srv)
		},
	}
}

// Helper functions

// parseIDArg reads the first positional argument as a planet id.
// A missing argument yields nil, which operations report as NOT_FOUND.
func parseIDArg(c *cli.Context) (*int64, error) {
	if c.NArg() == 0 {
		return nil, nil
	}
	raw := c.Args().First()
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid planet id: %q", raw))
	}
	return &id, nil
}

// outputJSON marshals result to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if hErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", hErr.Code, hErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
