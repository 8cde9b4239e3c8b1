// SPDX-License-Identifier: MPL-2.0

// Package issue turns failures into guidance a catalog maintainer can act on.
//
// ActionableError carries the failed operation, the file or directory involved
// and fix suggestions. Issue holds a longer Markdown guide per failure class,
// rendered with glamour when a command runs with --explain.
package issue
