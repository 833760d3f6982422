// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/beevik/cmd"
	"github.com/beevik/term"
)

const consoleRedrawInterval = 100 * time.Millisecond

// cmdConsole runs the machine with the terminal in raw input mode.
// Keystrokes go to the emulated keyboard buffer and the text screen is
// redrawn until the escape key is pressed.
func (h *Host) cmdConsole(c cmd.Selection) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		h.println("The console requires a terminal.")
		return nil
	}

	oldState, err := term.MakeRawInput(fd)
	if err != nil {
		h.printf("Failed to enter raw mode: %v\n", err)
		return nil
	}
	defer term.Restore(fd, oldState)

	h.println("Entering console. Press ESC to return to the monitor.")
	h.flush()

	// Run the machine and redraw the screen in the background while this
	// goroutine blocks on keyboard input.
	runDone := make(chan error, 1)
	go func() {
		runDone <- h.mach.Run(0)
	}()

	redrawDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(consoleRedrawInterval)
		defer ticker.Stop()
		for {
			select {
			case <-redrawDone:
				return
			case <-ticker.C:
				drawConsoleScreen(h.mach.ScreenText())
			}
		}
	}()

	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			break
		}
		if buf[0] == 0x1b {
			break
		}
		h.mach.Type(string(buf[0]))
	}

	close(redrawDone)
	h.mach.Stop()
	if err := <-runDone; err != nil {
		h.printf("\n%v\n", err)
	}

	h.println("\nLeaving console.")
	return nil
}

// drawConsoleScreen repaints the terminal with the emulated text screen.
func drawConsoleScreen(text string) {
	var sb strings.Builder
	sb.WriteString("\x1b[H\x1b[2J")
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		sb.WriteString(line)
		sb.WriteString("\r\n")
	}
	fmt.Fprint(os.Stdout, sb.String())
}
