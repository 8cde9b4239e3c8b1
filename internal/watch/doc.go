// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when the plugins tree changes.
//
// The plugins root and each plugin directory directly below it are watched
// with fsnotify. Manifest edits and plugin directories appearing or
// disappearing are collected over a debounce window and delivered to the
// callback in one batch. Callbacks never overlap: a batch that becomes due
// while the previous callback is still running is retried after another
// debounce period.
package watch
