//go:build rp2350

package main

import "time"

const board = "pico2"

const bootDelay = 3 * time.Second
