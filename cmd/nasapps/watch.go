// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/stumpfworks/nasapps/internal/watch"
	"github.com/stumpfworks/nasapps/pkg/types"
)

// runWatchMode runs pass once, then again after every debounced batch of
// manifest changes below root, until ctx is cancelled (Ctrl+C). A failing pass
// is reported and the loop keeps going so the user can fix and save again.
func runWatchMode(ctx context.Context, app *App, root types.FilesystemPath, name string, pass func(context.Context) error) error {
	status := func(format string, args ...any) {
		fmt.Fprintf(app.stdout, "%s %s\n", VerboseStyle.Render(iconWatch), fmt.Sprintf(format, args...))
	}
	report := func(err error) {
		if err == nil {
			return
		}
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Err == nil {
			return
		}
		fmt.Fprintf(app.stderr, "%s %s\n", WarningStyle.Render("!"), formatErrorForDisplay(err, app.verbose))
	}

	status("Watch mode: initial %s", name)
	report(pass(ctx))

	w, err := watch.New(watch.Config{
		Root:   root.String(),
		Logger: app.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			status("Detected %d change(s). Re-running %s...", len(changed), name)
			report(pass(ctx))
			status("Watching %s for changes...", root)
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	status("Watching %s for changes (Ctrl+C to stop)...", root)
	return w.Run(ctx)
}
