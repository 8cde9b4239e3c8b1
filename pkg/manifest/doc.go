// SPDX-License-Identifier: MPL-2.0

// Package manifest loads plugin manifests (plugin.json) from plugin directories.
//
// A plugins root holds one directory per plugin. The directory name is the
// plugin's slug, which is the stable identifier used in URLs and on disk and is
// independent of the manifest's declared id:
//
//	plugins/
//	  nextcloud/
//	    plugin.json
//	  jellyfin/
//	    plugin.json
//
// Every optional field of Manifest is a pointer so callers can tell an absent
// field from an empty one. The package performs no schema enforcement: the
// validate package applies the naming and schema rules, and the registry package
// applies defaults when building catalog entries.
package manifest
