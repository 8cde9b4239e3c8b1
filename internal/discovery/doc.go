// SPDX-License-Identifier: MPL-2.0

// Package discovery locates plugin directories under a plugins root and defines
// the structured Diagnostic type shared by the registry and validate packages.
//
// Only immediate subdirectories of the root are plugin directories; regular
// files at the root are ignored. Results are ordered by slug so every run over
// the same tree visits plugins in the same order.
package discovery
