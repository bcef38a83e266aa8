package cmd

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/pkgtable"
	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/selector"
	"github.com/spf13/cobra"
)

var (
	pkgBoard          string
	pkgFrameworks     []string
	pkgTargets        []string
	pkgUploadProtocol string
	pkgDebugTool      string
	pkgProject        string
	pkgEnv            string
	pkgRequiredOnly   bool
)

type packagesReport struct {
	Context    selector.BuildContext `json:"context" yaml:"context"`
	Packages   pkgtable.Table        `json:"packages" yaml:"packages"`
	Frameworks pkgtable.Frameworks   `json:"frameworks" yaml:"frameworks"`
	Applied    []string              `json:"applied" yaml:"applied"`
}

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "Resolve the packages a build needs",
	Long: `Apply the platform rules to the package table for a board, framework set and
build targets, and print the resulting packages and framework pointers.

The build can be described with flags or read from a platformio.ini style
project file; flags override values from the project environment.

Examples:
  nrf52 packages --board nrf52_dk --framework zephyr
  nrf52 packages --board nrf52840_dk --upload-protocol stlink --target erase
  nrf52 packages --project platformio.ini --env nrf52_dk --output json`,
	Args: cobra.NoArgs,
	RunE: runPackages,
}

func init() {
	rootCmd.AddCommand(packagesCmd)

	packagesCmd.Flags().StringVarP(&pkgBoard, "board", "b", "", "board id")
	packagesCmd.Flags().StringSliceVarP(&pkgFrameworks, "framework", "f", nil, "requested frameworks (repeatable)")
	packagesCmd.Flags().StringSliceVarP(&pkgTargets, "target", "t", nil, "build targets, e.g. upload, erase, bootloader (repeatable)")
	packagesCmd.Flags().StringVar(&pkgUploadProtocol, "upload-protocol", "", "explicit upload protocol")
	packagesCmd.Flags().StringVar(&pkgDebugTool, "debug-tool", "", "debug tool")
	packagesCmd.Flags().StringVar(&pkgProject, "project", "", "platformio.ini style project file")
	packagesCmd.Flags().StringVarP(&pkgEnv, "env", "e", "", "project environment (default: first default env)")
	packagesCmd.Flags().BoolVar(&pkgRequiredOnly, "required", false, "only list packages that are always installed")
}

func buildContext() (selector.BuildContext, error) {
	var ctx selector.BuildContext
	if pkgProject != "" {
		env, err := projectEnv(pkgProject, pkgEnv)
		if err != nil {
			return ctx, err
		}
		ctx = env.BuildContext()
	}

	if pkgBoard != "" {
		ctx.Board = pkgBoard
	}
	if len(pkgFrameworks) > 0 {
		ctx.Frameworks = pkgFrameworks
	}
	if len(pkgTargets) > 0 {
		ctx.Targets = pkgTargets
	}
	if pkgUploadProtocol != "" {
		ctx.UploadProtocol = pkgUploadProtocol
	}
	if pkgDebugTool != "" {
		ctx.DebugTool = pkgDebugTool
	}
	return ctx, nil
}

func runPackages(cmd *cobra.Command, args []string) error {
	ctx, err := buildContext()
	if err != nil {
		return err
	}
	platform, err := loadPlatform()
	if err != nil {
		return err
	}
	reg, err := loadBoards()
	if err != nil {
		return err
	}

	result, err := newSelector(reg).ResolveManifest(platform, ctx)
	if err != nil {
		return fmt.Errorf("resolve packages: %w", err)
	}

	names := result.Packages.Names()
	if pkgRequiredOnly {
		names = result.Packages.Required()
	}

	report := packagesReport{
		Context:    ctx,
		Packages:   pkgtable.Table{},
		Frameworks: result.Frameworks,
		Applied:    result.Applied,
	}
	for _, name := range names {
		report.Packages[name] = result.Packages[name]
	}
	if done, err := writeStructured(report); done {
		return err
	}

	fmt.Printf("Platform: %s\n", platform.Name)
	if ctx.Board != "" {
		fmt.Printf("Board: %s\n", ctx.Board)
	}
	if len(ctx.Frameworks) > 0 {
		fmt.Printf("Frameworks: %s\n", strings.Join(ctx.Frameworks, ", "))
	}
	if len(result.Applied) > 0 {
		fmt.Printf("Rules applied: %s\n", strings.Join(result.Applied, ", "))
	}

	fmt.Println("\nPackages:")
	for _, name := range names {
		pkg := report.Packages[name]
		status := "required"
		if pkg.Optional {
			status = "optional"
		}
		fmt.Printf("  %-36s %-16s %s\n", name, pkg.Version, status)
	}

	if len(result.Frameworks) > 0 {
		fmt.Println("\nFrameworks:")
		for _, name := range sortedKeys(result.Frameworks) {
			fw := result.Frameworks[name]
			fmt.Printf("  %-12s %s", name, fw.Package)
			if fw.Script != "" {
				fmt.Printf(" (%s)", fw.Script)
			}
			fmt.Println()
		}
	}
	return nil
}
