package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/reelx/internal/formatter"
	"github.com/desertthunder/reelx/internal/services"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin exchanges credentials for a session and persists it.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	username := cmd.String("username")
	r.logger.Info("logging in", "username", username)

	sess, err := r.sessions.Login(ctx, username, cmd.String("password"))
	if err != nil {
		return err
	}

	r.logger.Info("authentication successful", "username", sess.Username())
	return r.writePlain("✓ Logged in as %s\n", sess.Username())
}

// AuthLogout clears the local session. The server is notified on a best-effort basis.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	cur := r.sessions.Current()
	if !cur.Authenticated() {
		return r.writePlain("Not logged in\n")
	}

	r.sessions.Logout(ctx)
	return r.writePlain("✓ Logged out %s\n", cur.Username())
}

// AuthStatus reports the current session without contacting the server.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	cur := r.sessions.Current()
	driver := shared.FirstNonEmpty(r.config.Storage.Driver, "sqlite")

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"state":         cur.State().String(),
			"authenticated": cur.Authenticated(),
			"user":          cur.User,
			"base_url":      r.gateway.BaseURL(),
			"storage":       driver,
		}, cmd.Bool("pretty"))
	}

	if cur.Authenticated() {
		r.writePlain("Authentication: ✓ Logged in as %s\n", cur.Username())
	} else {
		r.writePlain("Authentication: ✗ Not logged in\n")
	}
	r.writePlain("API: %s\n", shared.FirstNonEmpty(r.gateway.BaseURL(), "(not configured)"))
	return r.writePlain("Storage: %s\n", driver)
}

// AuthRegister creates an account. It does not log in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	req := services.RegisterRequest{
		Username: cmd.String("username"),
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
		Phone:    cmd.String("phone"),
		DOB:      cmd.String("dob"),
	}

	r.logger.Info("registering account", "username", req.Username)

	resp, err := r.account.Register(ctx, req)
	if err != nil {
		return err
	}

	r.writePlain("✓ Registered %s\n", req.Username)
	if resp.IsJSON && resp.JSONData != nil {
		return r.writeJSON(resp.JSONData, true)
	}
	if text := resp.Text(); text != "" {
		return r.writePlain("%s\n", text)
	}
	return nil
}

// AuthProfile shows the profile of the logged in user.
func (r *Runner) AuthProfile(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}
	if _, err := r.requireSession(); err != nil {
		return err
	}

	profile, err := r.account.Profile(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(profile, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", formatter.ProfileText(profile))
}

// AuthProfileUpdate changes the email, phone or date of birth of the logged in user.
func (r *Runner) AuthProfileUpdate(ctx context.Context, cmd *cli.Command) error {
	update := services.ProfileUpdate{
		Email: cmd.String("email"),
		Phone: cmd.String("phone"),
		DOB:   cmd.String("dob"),
	}
	if update == (services.ProfileUpdate{}) {
		return fmt.Errorf("%w: at least one of --email, --phone or --dob", shared.ErrMissingArgument)
	}

	if err := r.connect(ctx); err != nil {
		return err
	}
	if _, err := r.requireSession(); err != nil {
		return err
	}

	profile, err := r.account.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}

	r.writePlain("✓ Profile updated\n")
	return r.writePlain("%s", formatter.ProfileText(profile))
}
