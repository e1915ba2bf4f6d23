package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/reelx/internal/services"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/urfave/cli/v3"
)

func apiPath(cmd *cli.Command) (string, error) {
	path := cmd.StringArg("path")
	if path == "" {
		return "", fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path, nil
}

func (r *Runner) writeResponse(resp *services.Response, pretty bool) error {
	if resp.IsJSON && resp.JSONData != nil {
		return r.writeJSON(resp.JSONData, pretty)
	}
	if len(resp.Body) == 0 {
		return r.writePlain("✓ %d\n", resp.StatusCode)
	}
	return r.writePlain("%s\n", resp.Text())
}

// APIGet makes a direct GET request through the gateway.
//
// The session token and app token are attached exactly as for the typed clients.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path, err := apiPath(cmd)
	if err != nil {
		return err
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.gateway.Get(ctx, path, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") && !resp.IsJSON {
		return fmt.Errorf("%w: response is %q", shared.ErrDecodeResponse, resp.Headers.Get("Content-Type"))
	}
	return r.writeResponse(resp, cmd.Bool("pretty"))
}

// APIPost makes a direct POST request with a JSON body.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path, err := apiPath(cmd)
	if err != nil {
		return err
	}

	data := cmd.String("data")
	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}
	if !json.Valid([]byte(data)) {
		return fmt.Errorf("%w: data is not valid JSON", shared.ErrInvalidInput)
	}

	if err := r.connect(ctx); err != nil {
		return err
	}

	r.logger.Info("POST request", "path", path)

	resp, err := r.gateway.Post(ctx, path, json.RawMessage(data))
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	return r.writeResponse(resp, true)
}

// APIDelete makes a direct DELETE request.
func (r *Runner) APIDelete(ctx context.Context, cmd *cli.Command) error {
	path, err := apiPath(cmd)
	if err != nil {
		return err
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	r.logger.Info("DELETE request", "path", path)

	resp, err := r.gateway.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	return r.writeResponse(resp, true)
}
