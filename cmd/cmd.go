// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// listCommand prints the items matching a filter
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List items from the store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "filter",
				Aliases: []string{"f"},
				Usage:   "Which items to show: all, active or completed",
				Value:   "all",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: txt, json, yaml, csv or markdown",
				Value: "txt",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to a file instead of stdout",
			},
		},
		Action: r.List,
	}
}

// addCommand creates an item
func addCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add an item",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "name"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the created item as JSON",
			},
		},
		Action: r.Add,
	}
}

// toggleCommand flips the completed flag of an item
func toggleCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "toggle",
		Aliases: []string{"done"},
		Usage:   "Toggle an item between active and completed",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Action: r.Toggle,
	}
}

// renameCommand renames an item
func renameCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "rename",
		Usage: "Rename an item",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
			&cli.StringArg{Name: "name"},
		},
		Action: r.Rename,
	}
}

// removeCommand deletes an item
func removeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "rm",
		Aliases: []string{"delete"},
		Usage:   "Delete an item",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Action: r.Remove,
	}
}

// tuiCommand returns the top-level TUI command for interactive list management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive task list",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log file path (overrides log.file)",
			},
		},
		Action: r.TUI,
	}
}

// serveCommand runs the reference item store
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the /todos item store backed by SQLite",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides server.port)",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "SQLite database path (overrides database.path)",
			},
			&cli.BoolFlag{
				Name:  "no-audit",
				Usage: "Do not record mutating requests in the request log",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write the default configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   defaultConfigPath,
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the store database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   defaultConfigPath,
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}
