// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import "github.com/beevik/cmd"

var cmds *cmd.Tree

// commandSummaries drives the top-level help listing.
type commandSummary struct {
	name  string
	brief string
}

var commandSummaries = []commandSummary{
	{"attach", "Attach a disk image"},
	{"breakpoint", "Breakpoint commands"},
	{"console", "Enter the machine console"},
	{"databreakpoint", "Data breakpoint commands"},
	{"detach", "Detach disk images"},
	{"disassemble", "Disassemble code"},
	{"help", "Display command help"},
	{"load", "Load a PRG file"},
	{"memory", "Memory commands"},
	{"quit", "Quit the program"},
	{"register", "View or change register values"},
	{"reset", "Reset the machine"},
	{"run", "Run the CPU"},
	{"save", "Save memory to a PRG file"},
	{"screen", "Display the text screen"},
	{"set", "Set a configuration variable"},
	{"status", "Display drive status"},
	{"step", "Step the debugger"},
	{"trace", "Display the instruction trace"},
	{"type", "Type text on the keyboard"},
}

func init() {
	root := cmd.NewTree(cmd.TreeDescriptor{Name: "go64"})
	root.AddCommand(cmd.CommandDescriptor{
		Name:        "help",
		Description: "Display help for a command.",
		Usage:       "help [<command>]",
		Data:        (*Host).cmdHelp,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "attach",
		Brief: "Attach a disk image",
		Description: "Attach a .d64 disk image file to the drive at the" +
			" specified device number (8 to 11). The drive is created if" +
			" it does not exist yet.",
		Usage: "attach <device> <filename>",
		Data:  (*Host).cmdAttach,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "detach",
		Brief: "Detach disk images",
		Description: "Detach the disk image from the drive at the specified" +
			" device number, or from all drives when no device is given.",
		Usage: "detach [<device>]",
		Data:  (*Host).cmdDetach,
	})

	// Breakpoint commands
	bp := root.AddSubtree(cmd.TreeDescriptor{Name: "breakpoint", Brief: "Breakpoint commands"})
	bp.AddCommand(cmd.CommandDescriptor{
		Name:        "list",
		Brief:       "List breakpoints",
		Description: "List all current breakpoints.",
		Usage:       "breakpoint list",
		Data:        (*Host).cmdBreakpointList,
	})
	bp.AddCommand(cmd.CommandDescriptor{
		Name:  "add",
		Brief: "Add a breakpoint",
		Description: "Add a breakpoint at the specified address." +
			" The breakpoint starts enabled.",
		Usage: "breakpoint add <address>",
		Data:  (*Host).cmdBreakpointAdd,
	})
	bp.AddCommand(cmd.CommandDescriptor{
		Name:        "remove",
		Brief:       "Remove a breakpoint",
		Description: "Remove a breakpoint at the specified address.",
		Usage:       "breakpoint remove <address>",
		Data:        (*Host).cmdBreakpointRemove,
	})
	bp.AddCommand(cmd.CommandDescriptor{
		Name:        "enable",
		Brief:       "Enable a breakpoint",
		Description: "Enable a previously added breakpoint.",
		Usage:       "breakpoint enable <address>",
		Data:        (*Host).cmdBreakpointEnable,
	})
	bp.AddCommand(cmd.CommandDescriptor{
		Name:  "disable",
		Brief: "Disable a breakpoint",
		Description: "Disable a previously added breakpoint. This" +
			" prevents the breakpoint from being hit when running the" +
			" CPU",
		Usage: "breakpoint disable <address>",
		Data:  (*Host).cmdBreakpointDisable,
	})

	// Data breakpoint commands
	db := root.AddSubtree(cmd.TreeDescriptor{Name: "databreakpoint", Brief: "Data Breakpoint commands"})
	db.AddCommand(cmd.CommandDescriptor{
		Name:        "list",
		Brief:       "List data breakpoints",
		Description: "List all current data breakpoints.",
		Usage:       "databreakpoint list",
		Data:        (*Host).cmdDataBreakpointList,
	})
	db.AddCommand(cmd.CommandDescriptor{
		Name:  "add",
		Brief: "Add a data breakpoint",
		Description: "Add a new data breakpoint at the specified" +
			" memory address. When the CPU stores data at this address, the " +
			" breakpoint will stop the CPU. Optionally, a byte " +
			" value may be specified, and the CPU will stop only " +
			" when this value is stored. The data breakpoint starts" +
			" enabled.",
		Usage: "databreakpoint add <address> [<value>]",
		Data:  (*Host).cmdDataBreakpointAdd,
	})
	db.AddCommand(cmd.CommandDescriptor{
		Name:  "remove",
		Brief: "Remove a data breakpoint",
		Description: "Remove a previously added data breakpoint at" +
			" the specified memory address.",
		Usage: "databreakpoint remove <address>",
		Data:  (*Host).cmdDataBreakpointRemove,
	})
	db.AddCommand(cmd.CommandDescriptor{
		Name:        "enable",
		Brief:       "Enable a data breakpoint",
		Description: "Enable a previously added breakpoint.",
		Usage:       "databreakpoint enable <address>",
		Data:        (*Host).cmdDataBreakpointEnable,
	})
	db.AddCommand(cmd.CommandDescriptor{
		Name:        "disable",
		Brief:       "Disable a data breakpoint",
		Description: "Disable a previously added breakpoint.",
		Usage:       "databreakpoint disable <address>",
		Data:        (*Host).cmdDataBreakpointDisable,
	})

	root.AddCommand(cmd.CommandDescriptor{
		Name:  "console",
		Brief: "Enter the machine console",
		Description: "Run the machine with the terminal in raw input mode." +
			" Keystrokes are fed to the emulated keyboard buffer and the" +
			" text screen is redrawn each frame. Press the escape key to" +
			" return to the monitor.",
		Usage: "console",
		Data:  (*Host).cmdConsole,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "disassemble",
		Brief: "Disassemble code",
		Description: "Disassemble machine code starting at the requested" +
			" address. The number of instruction lines to disassemble may be" +
			" specified as an option. If no address is specified, the" +
			" disassembly continues from where the last disassembly left off.",
		Usage: "disassemble [<address>] [<lines>]",
		Data:  (*Host).cmdDisassemble,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "load",
		Brief: "Load a PRG file",
		Description: "Load a .prg file into the emulated machine's memory at" +
			" the load address embedded in the file. A load at the BASIC" +
			" text base updates the interpreter's end-of-program pointer.",
		Usage: "load <filename>",
		Data:  (*Host).cmdLoad,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "save",
		Brief: "Save memory to a PRG file",
		Description: "Save a range of memory to a .prg file with a" +
			" load-address header. You must specify the start address and" +
			" the end address (exclusive) of the range.",
		Usage: "save <filename> <start> <end>",
		Data:  (*Host).cmdSave,
	})

	// Memory commands
	me := root.AddSubtree(cmd.TreeDescriptor{Name: "memory", Brief: "Memory commands"})
	me.AddCommand(cmd.CommandDescriptor{
		Name:  "dump",
		Brief: "Dump memory at address",
		Description: "Dump the contents of memory starting from the" +
			" specified address. The number of bytes to dump may be" +
			" specified as an option. If no address is specified, the" +
			" memory dump continues from where the last dump left off.",
		Usage: "memory dump [<address>] [<bytes>]",
		Data:  (*Host).cmdMemoryDump,
	})
	me.AddCommand(cmd.CommandDescriptor{
		Name:  "set",
		Brief: "Set memory at address",
		Description: "Set the contents of memory starting from the specified" +
			" address. The values to assign should be a series of" +
			" space-separated byte values.",
		Usage: "memory set <address> <byte> [<byte> ...]",
		Data:  (*Host).cmdMemorySet,
	})

	root.AddCommand(cmd.CommandDescriptor{
		Name:        "quit",
		Brief:       "Quit the program",
		Description: "Quit the program.",
		Usage:       "quit",
		Data:        (*Host).cmdQuit,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "register",
		Brief: "View or change register values",
		Description: "When used without arguments, this command displays the current" +
			" contents of the CPU registers.  When used with arguments, this" +
			" command changes the value of a register or one of the CPU's status" +
			" flags. Allowed register names include A, X, Y, PC and SP. Allowed status" +
			" flag names include N (Sign), Z (Zero), C (Carry), I (InterruptDisable)," +
			" D (Decimal) and V (Overflow).",
		Usage: "register [<name> <value>]",
		Data:  (*Host).cmdRegister,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "reset",
		Brief: "Reset the machine",
		Description: "Reset the CPU through the KERNAL reset vector. Memory" +
			" contents are preserved.",
		Usage: "reset",
		Data:  (*Host).cmdReset,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "run",
		Brief: "Run the CPU",
		Description: "Run the CPU until a breakpoint is hit, the optional" +
			" cycle limit is reached, or the user types Ctrl-C.",
		Usage: "run [<cycles>]",
		Data:  (*Host).cmdRun,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "screen",
		Brief: "Display the text screen",
		Description: "Render the emulated machine's 40x25 text screen as" +
			" ASCII and display it.",
		Usage: "screen",
		Data:  (*Host).cmdScreen,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "set",
		Brief: "Set a configuration variable",
		Description: "Set the value of a configuration variable. To see the" +
			" current values of all configuration variables, type set" +
			" without any arguments.",
		Usage: "set [<var> <value>]",
		Data:  (*Host).cmdSet,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "status",
		Brief: "Display drive status",
		Description: "Display the status line reported by each attached" +
			" drive, in the 1541's \"code, message, track, sector\" format.",
		Usage: "status",
		Data:  (*Host).cmdStatus,
	})

	// Step commands
	st := root.AddSubtree(cmd.TreeDescriptor{Name: "step", Brief: "Step the debugger"})
	st.AddCommand(cmd.CommandDescriptor{
		Name:  "in",
		Brief: "Step into next instruction",
		Description: "Step the CPU by a single instruction. If the" +
			" instruction is a subroutine call, step into the subroutine." +
			" The number of steps may be specified as an option.",
		Usage: "step in [<count>]",
		Data:  (*Host).cmdStepIn,
	})
	st.AddCommand(cmd.CommandDescriptor{
		Name:  "over",
		Brief: "Step over next instruction",
		Description: "Step the CPU by a single instruction. If the" +
			" instruction is a subroutine call, step over the subroutine." +
			" The number of steps may be specified as an option.",
		Usage: "step over [<count>]",
		Data:  (*Host).cmdStepOver,
	})

	root.AddCommand(cmd.CommandDescriptor{
		Name:  "trace",
		Brief: "Display the instruction trace",
		Description: "Display the most recent entries in the instruction" +
			" trace ring. The number of entries to display may be specified" +
			" as an option. Tracing must have been enabled at startup.",
		Usage: "trace [<lines>]",
		Data:  (*Host).cmdTrace,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "type",
		Brief: "Type text on the keyboard",
		Description: "Post a string of characters to the emulated keyboard" +
			" buffer, followed by a carriage return. The KERNAL consumes" +
			" the keys the next time its interrupt handler runs.",
		Usage: "type <text>",
		Data:  (*Host).cmdType,
	})

	// Add command shortcuts.
	root.AddShortcut("b", "breakpoint")
	root.AddShortcut("bp", "breakpoint")
	root.AddShortcut("ba", "breakpoint add")
	root.AddShortcut("br", "breakpoint remove")
	root.AddShortcut("bl", "breakpoint list")
	root.AddShortcut("be", "breakpoint enable")
	root.AddShortcut("bd", "breakpoint disable")
	root.AddShortcut("d", "disassemble")
	root.AddShortcut("db", "databreakpoint")
	root.AddShortcut("dbp", "databreakpoint")
	root.AddShortcut("dbl", "databreakpoint list")
	root.AddShortcut("dba", "databreakpoint add")
	root.AddShortcut("dbr", "databreakpoint remove")
	root.AddShortcut("dbe", "databreakpoint enable")
	root.AddShortcut("dbd", "databreakpoint disable")
	root.AddShortcut("m", "memory dump")
	root.AddShortcut("ms", "memory set")
	root.AddShortcut("r", "register")
	root.AddShortcut("s", "step over")
	root.AddShortcut("si", "step in")
	root.AddShortcut("sc", "screen")
	root.AddShortcut("t", "type")
	root.AddShortcut("?", "help")
	root.AddShortcut(".", "register")

	cmds = root
}
