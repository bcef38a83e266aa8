package cmd

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/board"
	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/debugtools"
	"github.com/spf13/cobra"
)

var (
	optTool    string
	optSpeed   string
	optProject string
	optEnv     string
)

var debugOptionsCmd = &cobra.Command{
	Use:   "debug-options <board>",
	Short: "Print the GDB server command line of a debug session",
	Long: `Refine the static server options of one of the board's debug tools for a
debug session. When --speed is given, the adapter speed is appended in the
form the server understands: "-c 'adapter speed N'" for OpenOCD, "-speed N"
for J-Link. Servers of other kinds ignore the speed.

Without --tool the board's first default debug tool is used. With --project,
the environment's debug_tool and debug_speed options are used unless the
flags are given.`,
	Args: cobra.ExactArgs(1),
	RunE: runDebugOptions,
}

func init() {
	rootCmd.AddCommand(debugOptionsCmd)

	debugOptionsCmd.Flags().StringVar(&optTool, "tool", "", "debug tool (jlink, stlink, cmsis-dap, ...)")
	debugOptionsCmd.Flags().StringVar(&optSpeed, "speed", "", "adapter speed in kHz")
	debugOptionsCmd.Flags().StringVar(&optProject, "project", "", "platformio.ini style project file")
	debugOptionsCmd.Flags().StringVarP(&optEnv, "env", "e", "", "project environment (default: first default env)")
}

func runDebugOptions(cmd *cobra.Command, args []string) error {
	m, err := augmentedBoard(args[0])
	if err != nil {
		return err
	}

	var speed *string
	if cmd.Flags().Changed("speed") {
		speed = &optSpeed
	}

	tool := optTool
	if optProject != "" {
		env, err := projectEnv(optProject, optEnv)
		if err != nil {
			return err
		}
		ctx := env.BuildContext()
		if tool == "" {
			tool = ctx.DebugTool
		}
		if speed == nil && ctx.DebugSpeed != "" {
			speed = &ctx.DebugSpeed
		}
	}
	if tool == "" {
		tool, err = defaultTool(m)
		if err != nil {
			return err
		}
	}

	opts, err := debugtools.ToolOptions(m, tool, speed)
	if err != nil {
		return err
	}

	if done, err := writeStructured(opts); done {
		return err
	}

	fmt.Printf("Tool: %s\n", tool)
	fmt.Printf("Executable: %s\n", opts.Server.Executable)
	fmt.Printf("Arguments: %s\n", quoteArgs(opts.Server.Arguments))
	return nil
}

func defaultTool(m *board.Manifest) (string, error) {
	for _, name := range m.Debug.DefaultTools {
		if t, ok := m.Debug.Tools[name]; ok && t.Server != nil {
			return name, nil
		}
	}
	for _, name := range toolOrder(m.Debug.Tools) {
		if m.Debug.Tools[name].Server != nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("board %s has no debug tool with a server", m.ID)
}

func quoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		if strings.ContainsAny(arg, " \t;") {
			arg = "'" + arg + "'"
		}
		quoted[i] = arg
	}
	return strings.Join(quoted, " ")
}
