package cmd

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/board"
	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/debugtools"
	"github.com/spf13/cobra"
)

var debugToolsCmd = &cobra.Command{
	Use:   "debug-tools <board>",
	Short: "Show the debug tools of a board",
	Long: `Synthesize the debug tool descriptors of a board from the probes listed in its
upload protocols. Tools declared in the board manifest are shown as they are.

A board offering J-Link must name its J-Link device (debug.jlink_device);
otherwise the command fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runDebugTools,
}

func init() {
	rootCmd.AddCommand(debugToolsCmd)
}

func runDebugTools(cmd *cobra.Command, args []string) error {
	m, err := augmentedBoard(args[0])
	if err != nil {
		return err
	}

	if done, err := writeStructured(m.Debug.Tools); done {
		return err
	}

	fmt.Printf("Debug tools for %s (%s):\n", m.ID, m.Name)
	if len(m.Debug.Tools) == 0 {
		fmt.Println("  none")
		return nil
	}
	for _, name := range toolOrder(m.Debug.Tools) {
		printTool(name, m.Debug.Tools[name])
	}
	return nil
}

// toolOrder lists the synthesized probes first, in evaluation order, then any
// other manifest tools alphabetically.
func toolOrder(tools map[string]*board.DebugTool) []string {
	var names []string
	seen := map[string]bool{}
	for _, kind := range debugtools.Probes {
		if _, ok := tools[string(kind)]; ok {
			names = append(names, string(kind))
			seen[string(kind)] = true
		}
	}
	for _, name := range sortedKeys(tools) {
		if !seen[name] {
			names = append(names, name)
		}
	}
	return names
}

func printTool(name string, tool *board.DebugTool) {
	var tags []string
	if tool.Onboard {
		tags = append(tags, "onboard")
	}
	if tool.Default {
		tags = append(tags, "default")
	}
	if len(tags) > 0 {
		fmt.Printf("  %s [%s]\n", name, strings.Join(tags, ", "))
	} else {
		fmt.Printf("  %s\n", name)
	}

	if tool.Server != nil {
		fmt.Printf("    server:    %s (%s, package %s)\n", tool.Server.Executable, tool.Server.Classify(), valueOr(tool.Server.Package, "-"))
		fmt.Printf("    arguments: %s\n", strings.Join(tool.Server.Arguments, " "))
	}
	for _, hwid := range tool.HWIDs {
		fmt.Printf("    hwid:      %s\n", strings.Join(hwid, ":"))
	}
	if tool.RequireDebugPort {
		fmt.Println("    requires a debug port")
	}
}

func valueOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
