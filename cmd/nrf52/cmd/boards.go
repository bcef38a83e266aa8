package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var boardsCheck bool

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List the board manifests of the platform",
	Long: `List every board manifest found in the boards directory with its upload
protocols. With --check, the debug tools of every board are synthesized and
boards with an incomplete debug configuration are reported.`,
	Args: cobra.NoArgs,
	RunE: runBoards,
}

func init() {
	rootCmd.AddCommand(boardsCmd)

	boardsCmd.Flags().BoolVar(&boardsCheck, "check", false, "validate the debug configuration of every board")
}

type boardSummary struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	MCU       string   `json:"mcu,omitempty" yaml:"mcu,omitempty"`
	Protocol  string   `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	Protocols []string `json:"protocols,omitempty" yaml:"protocols,omitempty"`
}

func runBoards(cmd *cobra.Command, args []string) error {
	reg, err := loadBoards()
	if err != nil {
		return err
	}

	var summaries []boardSummary
	for _, id := range reg.IDs() {
		m, err := reg.Board(id)
		if err != nil {
			return err
		}
		summaries = append(summaries, boardSummary{
			ID:        id,
			Name:      m.Name,
			MCU:       m.Build.MCU,
			Protocol:  m.Upload.Protocol,
			Protocols: m.Upload.Protocols,
		})
	}

	var checkErr error
	if boardsCheck {
		_, checkErr = newBuilder().AugmentAll(reg)
	}

	done, err := writeStructured(summaries)
	if err != nil {
		return err
	}
	if !done {
		fmt.Printf("Found %d board(s):\n", len(summaries))
		for _, s := range summaries {
			fmt.Printf("  %-28s %-40s %s\n", s.ID, s.Name, strings.Join(s.Protocols, ","))
		}
	}

	if checkErr != nil {
		return fmt.Errorf("debug configuration check failed for %d board(s):\n%w", len(joinedErrors(checkErr)), checkErr)
	}
	if boardsCheck && !done {
		fmt.Println("\nAll boards have a complete debug configuration.")
	}
	return nil
}

// joinedErrors unwraps an errors.Join result.
func joinedErrors(err error) []error {
	var multi interface{ Unwrap() []error }
	if errors.As(err, &multi) {
		return multi.Unwrap()
	}
	if err == nil {
		return nil
	}
	return []error{err}
}
