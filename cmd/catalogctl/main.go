// Command catalogctl is the operator CLI of a PR environment: it checks the
// document store, seeds data, exports snapshots and reads the system log.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
