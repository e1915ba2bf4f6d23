package main

import (
	"context"

	"github.com/desertthunder/reelx/internal/formatter"
	"github.com/urfave/cli/v3"
)

// PersonsList lists cast and crew.
func (r *Runner) PersonsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	params := pageParams(cmd)
	params["name"] = cmd.String("name")

	page, err := r.catalogue.Persons(ctx, params)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Persons")
	if len(page.Items) == 0 {
		return r.writePlain("No persons found.\n")
	}
	r.writePlain("%s", formatter.PersonTable(page.Items))
	if p := formatter.PaginationText(page.Pagination); p != "" {
		r.writePlain("%s\n", p)
	}
	return nil
}

// PersonsShow shows a person and the movies they are known for.
func (r *Runner) PersonsShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	person, err := r.catalogue.Person(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(person, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", formatter.PersonDetailText(person))
}
