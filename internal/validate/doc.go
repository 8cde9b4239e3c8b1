// SPDX-License-Identifier: MPL-2.0

// Package validate checks plugin manifests against the catalog rules.
//
// Manifest applies the rule set to one parsed manifest. Validator walks a
// plugins root and collects a Report, one PluginReport per directory. Rules
// are independent of each other; a run never stops at the first finding.
package validate
