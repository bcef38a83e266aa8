package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/probe"
	"github.com/spf13/cobra"
)

var probesBoard string

var probesCmd = &cobra.Command{
	Use:   "probes",
	Short: "List connected debug probes",
	Long: `Scan the USB bus for debug probes (J-Link, ST-Link, CMSIS-DAP, Black Magic
Probe) and print what was found. With --board, only probes usable with that
board's upload protocols are listed.`,
	Args: cobra.NoArgs,
	RunE: runProbes,
}

func init() {
	rootCmd.AddCommand(probesCmd)

	probesCmd.Flags().StringVarP(&probesBoard, "board", "b", "", "only list probes the board can use")
}

func runProbes(cmd *cobra.Command, args []string) error {
	var kinds []probe.Kind
	if probesBoard != "" {
		reg, err := loadBoards()
		if err != nil {
			return err
		}
		m, err := reg.Board(probesBoard)
		if err != nil {
			return err
		}
		for _, protocol := range m.Upload.Protocols {
			kinds = append(kinds, probe.Kind(protocol))
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	infos, err := probe.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discover probes: %w", err)
	}
	if kinds != nil {
		infos = probe.Filter(infos, kinds...)
	}

	if done, err := writeStructured(infos); done {
		return err
	}

	if len(infos) == 0 {
		fmt.Println("No probes found.")
		return nil
	}

	fmt.Println("Detected debug probes:")
	for _, info := range infos {
		fmt.Printf("  - %s [%s] (VID:PID %s:%s, bus/addr %s)\n", info.Label(), info.Kind, info.VendorID, info.ProductID, info.Path)
	}
	return nil
}
