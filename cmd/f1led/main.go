// f1led converts, inspects, simulates and streams F1 track visualization data
// for the HD108 strip firmware.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
