package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/starrycyq/travle/cmd/travlectl/commands"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "travlectl",
		Usage: "Operate the travel content scraping pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config file",
				Value:   "config/config.yaml",
				Sources: cli.EnvVars("TRAVLE_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create or update the database schema",
				Action: commands.MigrateAction,
			},
			{
				Name:  "scrape",
				Usage: "Submit a scraping task and run it to completion",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "owner",
						Usage:    "owner id the results are stored under",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    "keyword",
						Aliases: []string{"k"},
						Usage:   "search keyword (repeatable); defaults to the owner's preferences",
					},
					&cli.IntFlag{
						Name:  "max-items",
						Usage: "maximum items per keyword (defaults to scraper.max_items)",
					},
				},
				Action: commands.ScrapeAction,
			},
			{
				Name:  "task",
				Usage: "Inspect scraping tasks",
				Commands: []*cli.Command{
					{
						Name:      "show",
						Usage:     "Show one task",
						ArgsUsage: "<task-id>",
						Action:    commands.TaskShowAction,
					},
					{
						Name:  "list",
						Usage: "List an owner's tasks, newest first",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "owner",
								Required: true,
							},
						},
						Action: commands.TaskListAction,
					},
					{
						Name:      "events",
						Usage:     "Show the status history of a task",
						ArgsUsage: "<task-id>",
						Action:    commands.TaskEventsAction,
					},
				},
			},
			{
				Name:  "session",
				Usage: "Manage login sessions of the content site",
				Commands: []*cli.Command{
					{
						Name:  "save",
						Usage: "Store cookies for a subject",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "subject",
								Usage:    "external login identity, e.g. a phone number",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "session-id",
								Usage: "session id (generated when empty)",
							},
							&cli.StringFlag{
								Name:     "cookies",
								Usage:    `cookies as a JSON object, e.g. '{"web_session":"..."}'`,
								Required: true,
							},
						},
						Action: commands.SessionSaveAction,
					},
					{
						Name:  "link",
						Usage: "Link an owner to a session",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "owner", Required: true},
							&cli.StringFlag{Name: "session-id", Required: true},
							&cli.StringFlag{Name: "subject"},
						},
						Action: commands.SessionLinkAction,
					},
					{
						Name:  "show",
						Usage: "Show the session of an owner or a subject",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "owner"},
							&cli.StringFlag{Name: "subject"},
						},
						Action: commands.SessionShowAction,
					},
				},
			},
			{
				Name:  "preference",
				Usage: "Manage travel preferences that seed default keywords",
				Commands: []*cli.Command{
					{
						Name:  "add",
						Usage: "Record a preferred destination",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "owner", Required: true},
							&cli.StringFlag{Name: "destination", Required: true},
							&cli.StringFlag{
								Name:  "data",
								Usage: "extra preferences as a JSON object",
							},
						},
						Action: commands.PreferenceAddAction,
					},
					{
						Name:  "list",
						Usage: "List an owner's newest preferences",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "owner", Required: true},
							&cli.IntFlag{Name: "limit", Value: 5},
						},
						Action: commands.PreferenceListAction,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search stored content by similarity",
				ArgsUsage: "[query]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
					},
					&cli.IntFlag{
						Name:  "limit",
						Value: 5,
					},
					&cli.StringSliceFlag{
						Name:  "filter",
						Usage: "metadata filter key=value (repeatable)",
					},
				},
				Action: commands.SearchAction,
				Commands: []*cli.Command{
					{
						Name:   "info",
						Usage:  "Show document count and embedding model",
						Action: commands.SearchInfoAction,
					},
				},
			},
			{
				Name:   "keygen",
				Usage:  "Print a fresh encryption key and API key",
				Action: commands.KeygenAction,
			},
		},
	}
}
