// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the nasapps CLI.
//
// The command tree is built per invocation by NewRootCommand around an App,
// the composition root holding the filesystem, clock, logger and the loaded
// configuration. Handlers write reports to the App's stdout and signal
// non-zero exits through ExitError so that RunE never calls os.Exit.
package cmd
