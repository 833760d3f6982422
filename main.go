// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/beevik/term"

	"github.com/go64emu/go64/c64"
	"github.com/go64emu/go64/d64"
	"github.com/go64emu/go64/host"
)

var (
	romDir        string
	maxCycles     uint64
	dumpMemory    string
	trace         bool
	monitor       bool
	autoQuit      bool
	turbo         bool
	videoStandard string
)

func init() {
	flag.StringVar(&romDir, "rom-dir", "", "directory containing the basic, kernal, and character roms")
	flag.Uint64Var(&maxCycles, "max-cycles", 0, "stop after this many cpu cycles (0 = no limit)")
	flag.StringVar(&dumpMemory, "dump-memory", "", "write all 64KB of ram to this file at exit")
	flag.BoolVar(&trace, "trace", false, "record an instruction trace ring")
	flag.BoolVar(&monitor, "monitor", false, "start in the interactive monitor")
	flag.BoolVar(&autoQuit, "autoquit", false, "exit after the run completes instead of entering the monitor")
	flag.BoolVar(&turbo, "turbo", false, "run unthrottled instead of pacing to machine speed")
	flag.StringVar(&videoStandard, "video-standard", "pal", "video timing: pal or ntsc")
	flag.CommandLine.Usage = func() {
		fmt.Println("Usage: go64 [options] [file.prg | file.d64]\nOptions:")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	var standard c64.VideoStandard
	switch strings.ToLower(videoStandard) {
	case "pal":
		standard = c64.PAL
	case "ntsc":
		standard = c64.NTSC
	default:
		exitOnError(fmt.Errorf("unknown video standard '%s'", videoStandard))
	}

	cfg := c64.Config{Standard: standard, Turbo: turbo}
	if trace {
		cfg.TraceSize = 1024
	}
	mach := c64.New(cfg)

	dir, err := c64.FindROMDir(romDir)
	if err != nil {
		exitOnError(err)
	}
	if err := mach.Mem().LoadROMs(dir); err != nil {
		exitOnError(err)
	}

	// A .d64 argument is mounted on drive 8; a .prg argument is queued
	// for loading once the KERNAL boot sequence settles.
	if filename := flag.Arg(0); filename != "" {
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".d64":
			data, err := os.ReadFile(filename)
			if err != nil {
				exitOnError(err)
			}
			img, err := d64.New(data)
			if err != nil {
				exitOnError(err)
			}
			if err := mach.AttachDisk(8, img, filepath.Base(filename)); err != nil {
				exitOnError(err)
			}
		default:
			data, err := os.ReadFile(filename)
			if err != nil {
				exitOnError(err)
			}
			mach.QueueProgram(data)
		}
	}

	mach.Reset()

	h := host.New(mach)

	// Break on Ctrl-C.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		for {
			<-c
			h.Break()
		}
	}()

	if monitor {
		h.RunCommands(os.Stdin, os.Stdout, true)
		finish(mach)
		return
	}

	started := time.Now()
	runErr := mach.Run(maxCycles)
	elapsed := time.Since(started)
	printSpeed(mach.Cycles(), elapsed)
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", runErr)
	}

	// Drop into the monitor when attached to a terminal, unless told to
	// quit outright.
	if !autoQuit && term.IsTerminal(int(os.Stdin.Fd())) {
		h.RunCommands(os.Stdin, os.Stdout, true)
	}

	finish(mach)
}

// finish writes the optional memory dump before exit.
func finish(mach *c64.Machine) {
	if dumpMemory == "" {
		return
	}
	file, err := os.OpenFile(dumpMemory, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		exitOnError(err)
	}
	defer file.Close()
	if err := mach.DumpMemory(file); err != nil {
		exitOnError(err)
	}
	fmt.Printf("Dumped memory to '%s'.\n", dumpMemory)
}

func printSpeed(cycles uint64, elapsed time.Duration) {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return
	}
	fmt.Printf("Executed %d cycles in %.2fs (%.3f MHz)\n",
		cycles, secs, float64(cycles)/secs/1e6)
}

func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
