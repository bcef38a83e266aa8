// Package debugtools builds the GDB server descriptors of a board's debug
// probes and refines them for a debug session.
package debugtools
