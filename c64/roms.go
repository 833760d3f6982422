// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package c64

import (
	"fmt"
	"os"
	"path/filepath"
)

// ROMDirEnv names the environment variable consulted first when probing
// for a ROM directory.
const ROMDirEnv = "GO64_ROM_DIR"

// A romSpec identifies one required ROM file by its canonical filename
// and accepted aliases.
type romSpec struct {
	kind     ROMKind
	filename string
	aliases  []string
}

var romSpecs = []romSpec{
	{ROMBasic, "basic.901226-01.bin", []string{"basic-901226-01.bin", "basic"}},
	{ROMKernal, "kernal.901227-03.bin", []string{"kernal-901227-03.bin", "kernal"}},
	{ROMChar, "characters.901225-01.bin", []string{"chargen-901225-01.bin", "chargen"}},
}

// candidateROMDirs returns directories to probe, in priority order: the
// environment variable, the user's local share directory, and common
// VICE install locations.
func candidateROMDirs() []string {
	var dirs []string
	if env := os.Getenv(ROMDirEnv); env != "" {
		dirs = append(dirs, env)
	}
	dirs = append(dirs, "roms")
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(home, ".local", "share", "go64", "roms"),
			filepath.Join(home, ".vice", "C64"),
		)
	}
	dirs = append(dirs,
		"/usr/share/vice/C64",
		"/usr/local/share/vice/C64",
		"/opt/homebrew/share/vice/C64",
		"/usr/lib/vice/C64",
	)
	return dirs
}

// findROMFile locates a spec's file in dir, trying the canonical name
// first and then the aliases.
func findROMFile(dir string, spec romSpec) (string, bool) {
	names := append([]string{spec.filename}, spec.aliases...)
	for _, name := range names {
		path := filepath.Join(dir, name)
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			return path, true
		}
	}
	return "", false
}

// romsPresent reports whether all required ROM files exist in dir.
func romsPresent(dir string) bool {
	for _, spec := range romSpecs {
		if _, ok := findROMFile(dir, spec); !ok {
			return false
		}
	}
	return true
}

// FindROMDir locates a directory containing all required ROM images. If
// an explicit directory is given, only that directory is checked.
func FindROMDir(explicit string) (string, error) {
	if explicit != "" {
		if romsPresent(explicit) {
			return explicit, nil
		}
		return "", fmt.Errorf("roms not found in %s", explicit)
	}
	for _, dir := range candidateROMDirs() {
		if romsPresent(dir) {
			return dir, nil
		}
	}
	return "", fmt.Errorf("roms not found; set %s or use --rom-dir", ROMDirEnv)
}

// LoadROMs installs the BASIC, KERNAL, and character ROMs from files in
// the given directory. ROM absence or a size mismatch is a fatal setup
// error: nothing executes meaningfully without all three images.
func (m *Memory) LoadROMs(dir string) error {
	for _, spec := range romSpecs {
		path, ok := findROMFile(dir, spec)
		if !ok {
			return fmt.Errorf("missing %s rom in %s (expected %s)",
				spec.kind, dir, spec.filename)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s rom: %w", spec.kind, err)
		}
		if err := m.LoadROM(spec.kind, data); err != nil {
			return err
		}
	}
	return nil
}
