// SPDX-License-Identifier: MPL-2.0

// Package registry builds the plugin catalog (registry.json) from the plugin
// manifests under a plugins root.
//
// Generation is best-effort: every plugin directory produces an Outcome
// (loaded, skipped or failed), and the outcomes are folded into the catalog
// entries plus diagnostics. A broken manifest never aborts the run; only an
// unreadable plugins root does. The document is written once, at the end, via
// a temporary file renamed over the target.
package registry
