package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/reelx/internal/session"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/urfave/cli/v3"
)

// redact hides credentials kept in storage.
func redact(key, value string) string {
	if key == session.KeyAccessToken || strings.Contains(strings.ToLower(key), "token") {
		if len(value) <= 4 {
			return "****"
		}
		return value[:4] + "****"
	}
	return shared.Truncate(value, 60)
}

// StorageList lists the keys held in persisted storage. Token values are redacted.
func (r *Runner) StorageList(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}
	if r.entries == nil {
		return fmt.Errorf("%w: listing keys with the %q storage driver", shared.ErrNotImplemented, r.config.Storage.Driver)
	}

	entries, err := r.entries.Entries(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]map[string]string, 0, len(entries))
		for _, e := range entries {
			item := map[string]string{"key": e.Key, "value": redact(e.Key, e.Value)}
			if !e.UpdatedAt.IsZero() {
				item["updated_at"] = e.UpdatedAt.Format(time.RFC3339)
			}
			out = append(out, item)
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Storage")
	if len(entries) == 0 {
		return r.writePlain("(empty)\n")
	}
	for _, e := range entries {
		updated := "-"
		if !e.UpdatedAt.IsZero() {
			updated = e.UpdatedAt.Local().Format(time.DateTime)
		}
		r.writePlain("%-12s %-19s  %s\n", e.Key, updated, redact(e.Key, e.Value))
	}
	return nil
}
