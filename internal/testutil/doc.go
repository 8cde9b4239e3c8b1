// SPDX-License-Identifier: MPL-2.0

// Package testutil provides fixtures shared by package tests: an in-memory
// plugins tree builder and a controllable clock.
package testutil
