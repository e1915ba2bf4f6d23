// submodule cmd contains command definitions
package main

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/urfave/cli/v3"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
	}
}

// Before applies global flags.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

func pageFlags(limit int) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "page",
			Usage: "Page number",
			Value: 1,
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Items per page",
			Value: limit,
		},
	}
}

func flags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// setupCommand handles local configuration and storage setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config.toml with default values",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the local storage database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the latest migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "token",
				Usage: "Import the API base URL and app token from a browser request",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
				},
				Action: r.SetupToken,
			},
		},
	}
}

// authCommand handles account operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Log in, log out and manage your account",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in and persist the session",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Account username",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Sources:  cli.EnvVars("REELX_PASSWORD"),
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the session and notify the server",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the current session",
				Flags:  jsonFlags(),
				Action: r.AuthStatus,
			},
			{
				Name:  "register",
				Usage: "Create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Account username", Required: true},
					&cli.StringFlag{Name: "email", Usage: "Email address", Required: true},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Sources:  cli.EnvVars("REELX_PASSWORD"),
						Required: true,
					},
					&cli.StringFlag{Name: "phone", Usage: "Phone number"},
					&cli.StringFlag{Name: "dob", Usage: "Date of birth (YYYY-MM-DD)"},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "profile",
				Usage:  "Show your profile",
				Flags:  jsonFlags(),
				Action: r.AuthProfile,
				Commands: []*cli.Command{
					{
						Name:  "update",
						Usage: "Update email, phone or date of birth",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "email", Usage: "Email address"},
							&cli.StringFlag{Name: "phone", Usage: "Phone number"},
							&cli.StringFlag{Name: "dob", Usage: "Date of birth (YYYY-MM-DD)"},
						},
						Action: r.AuthProfileUpdate,
					},
				},
			},
		},
	}
}

// moviesCommand handles catalogue browsing
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse the movie catalogue",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List movies",
				Flags: flags(pageFlags(20), jsonFlags(), []cli.Flag{
					&cli.StringFlag{Name: "sort", Usage: "Sort order, e.g. rating or year"},
				}),
				Action: r.MoviesList,
			},
			{
				Name:      "search",
				Usage:     "Search movies by title, genre or person",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags: flags(pageFlags(20), jsonFlags(), []cli.Flag{
					&cli.StringFlag{Name: "genre", Usage: "Filter by genre"},
					&cli.StringFlag{Name: "person", Usage: "Filter by cast or crew name"},
				}),
				Action: r.MoviesSearch,
			},
			{
				Name:   "top-rated",
				Usage:  "List the highest rated movies",
				Flags:  flags(pageFlags(20), jsonFlags()),
				Action: r.MoviesTopRated,
			},
			{
				Name:   "popular",
				Usage:  "List the most popular movies",
				Flags:  flags(pageFlags(20), jsonFlags()),
				Action: r.MoviesPopular,
			},
			{
				Name:   "home",
				Usage:  "Show the dashboard: highlights, most popular and top rated",
				Flags:  jsonFlags(),
				Action: r.MoviesHome,
			},
			{
				Name:      "show",
				Usage:     "Show the full record of a movie",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: flags(jsonFlags(), []cli.Flag{
					&cli.BoolFlag{Name: "poster", Usage: "Open the poster in the browser"},
				}),
				Action: r.MoviesShow,
			},
			{
				Name:      "reviews",
				Usage:     "List reviews of a movie",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: flags(pageFlags(10), jsonFlags(), []cli.Flag{
					&cli.StringFlag{Name: "sort", Usage: "Sort order: newest or oldest", Value: "newest"},
				}),
				Action: r.MoviesReviews,
			},
			{
				Name:      "credits",
				Usage:     "List the directors and cast of a movie",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     jsonFlags(),
				Action:    r.MoviesCredits,
			},
		},
	}
}

// personsCommand handles cast and crew lookups
func personsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "persons",
		Aliases: []string{"people"},
		Usage:   "Browse cast and crew",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List persons",
				Flags: flags(pageFlags(20), jsonFlags(), []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Filter by name"},
				}),
				Action: r.PersonsList,
			},
			{
				Name:      "show",
				Usage:     "Show a person and the movies they are known for",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     jsonFlags(),
				Action:    r.PersonsShow,
			},
		},
	}
}

// favouritesCommand handles the logged-in user's favourites
func favouritesCommand(r *Runner) *cli.Command {
	idArg := func() []cli.Argument { return []cli.Argument{&cli.StringArg{Name: "id"}} }

	return &cli.Command{
		Name:    "favourites",
		Aliases: []string{"fav", "favorites"},
		Usage:   "Manage your favourite movies",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List your favourites",
				Flags:  jsonFlags(),
				Action: r.FavouritesList,
			},
			{
				Name:      "toggle",
				Usage:     "Add a movie, or remove it when already a favourite",
				Arguments: idArg(),
				Action:    r.FavouritesToggle,
			},
			{
				Name:      "add",
				Usage:     "Add a movie to your favourites",
				Arguments: idArg(),
				Action:    r.FavouritesAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a movie from your favourites",
				Arguments: idArg(),
				Action:    r.FavouritesRemove,
			},
			{
				Name:  "export",
				Usage: "Export your favourites with their details",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file, or directory for markdown",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent detail requests (max 10)",
						Value: 4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Detail requests per second",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "no-detail",
						Usage: "Export the summary records only",
					},
				},
				Action: r.FavouritesExport,
			},
		},
	}
}

// apiCommand handles direct gateway calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls through the gateway",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Direct GET, prints the response",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags:     jsonFlags(),
				Action:    r.APIGet,
			},
			{
				Name:      "post",
				Usage:     "Direct POST with JSON body",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
			{
				Name:      "delete",
				Usage:     "Direct DELETE",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Action:    r.APIDelete,
			},
		},
	}
}

// storageCommand inspects the persisted local storage
func storageCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "storage",
		Usage: "Inspect persisted local storage",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List persisted keys",
				Flags:  jsonFlags(),
				Action: r.StorageList,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive movie browser",
		Action:  r.TUI,
	}
}
