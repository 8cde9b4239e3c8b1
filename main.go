// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/stumpfworks/nasapps/cmd/nasapps"

func main() {
	cmd.Execute()
}
