//go:build !(rp2040 || rp2350)

package main

import "time"

const board = "host"

const bootDelay time.Duration = 0
