//go:build rp2040

package main

import "time"

const board = "pico"

// USB CDC needs a moment before the monitor output is visible.
const bootDelay = 3 * time.Second
