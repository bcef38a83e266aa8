package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/OpenTraceLab/OpenTraceNRF52/internal/config"
	"github.com/OpenTraceLab/OpenTraceNRF52/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose      bool
	platformDir  string
	boardsDir    string
	hostOS       string
	logLevel     string
	logFormat    string
	outputFormat string

	settings config.Config
)

var rootCmd = &cobra.Command{
	Use:   "nrf52",
	Short: "nRF52 platform package and debug tool resolver",
	Long: `Decide which toolchain, framework and debug probe packages an nRF52 build
needs, and how the GDB server of each supported probe (J-Link, ST-Link,
CMSIS-DAP, Black Magic Probe) is launched for a board.

Examples:
  nrf52 packages --board nrf52_dk --framework zephyr          # Resolve packages
  nrf52 packages --project platformio.ini --env release       # Resolve from a project file
  nrf52 debug-tools nrf52_dk                                  # Show debug tools of a board
  nrf52 debug-options nrf52_dk --tool stlink --speed 2000     # Server command line for a session
  nrf52 probes --board nrf52_dk                               # Connected probes usable with a board`,
	Version:           "0.3.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	flags.StringVarP(&platformDir, "platform-dir", "p", "", "platform directory holding platform.yaml, boards/ and misc/ (env "+config.EnvPlatformDir+")")
	flags.StringVar(&boardsDir, "boards-dir", "", "board manifest directory (default <platform-dir>/boards)")
	flags.StringVar(&hostOS, "host-os", "", "host operating system to resolve for (default: this host)")
	flags.StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error, disabled")
	flags.StringVar(&logFormat, "log-format", "", "log format: auto, console, json")
	flags.StringVarP(&outputFormat, "output", "o", "text", "output format: text, json, yaml")
}

func loadSettings(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.DefaultEnvFile)
	if err != nil {
		return err
	}
	if platformDir != "" {
		cfg.PlatformDir = platformDir
	}
	if boardsDir != "" {
		cfg.BoardsDir = boardsDir
	}
	if hostOS != "" {
		cfg.HostOS = strings.ToLower(hostOS)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	switch outputFormat {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", outputFormat)
	}

	logging.Init(logging.Config{
		Format:    cfg.LogFormat,
		Level:     cfg.LogLevel,
		Component: cmd.Name(),
	})
	settings = cfg
	return nil
}
