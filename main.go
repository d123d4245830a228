// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/topomap/topomap/cmd/topomap"

func main() {
	cmd.Execute()
}
