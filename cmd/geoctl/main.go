// Command geoctl runs geometry operations from the shell and submits bulk
// imports to the import worker.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
