package debugtools

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/board"
	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/probe"
	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/selector"
	"github.com/rs/zerolog/log"
)

// Probes is the evaluation order of the supported probe families.
var Probes = []probe.Kind{probe.KindBlackMagic, probe.KindJLink, probe.KindSTLink, probe.KindCMSISDAP}

const (
	jlinkPackage      = "tool-jlink"
	jlinkExecutable   = "JLinkGDBServer"
	jlinkWindowsExe   = "JLinkGDBServerCL.exe"
	jlinkPort         = "2331"
	openocdPackage    = "tool-openocd"
	openocdExecutable = "bin/openocd"
	openocdTarget     = "target/nrf52.cfg"
	stlinkTransport   = "transport select hla_swd; set WORKAREASIZE 0x4000"
)

// MissingDeviceError reports a board that offers J-Link without naming the
// J-Link device id.
type MissingDeviceError struct {
	Board string
}

func (e *MissingDeviceError) Error() string {
	return fmt.Sprintf("debugtools: missed J-Link device id for board %q", e.Board)
}

// Builder synthesizes the debug tool descriptors of board manifests.
type Builder struct {
	// HostOS selects the J-Link executable name. Empty means runtime.GOOS.
	HostOS string
}

// NewBuilder creates a builder for the current host.
func NewBuilder() *Builder {
	return &Builder{HostOS: runtime.GOOS}
}

// Augment returns a copy of m whose debug.tools holds a descriptor for every
// supported probe listed in upload.protocols. Descriptors already present in
// the manifest are kept as they are. m itself is not modified.
//
// A board offering J-Link without debug.jlink_device is a configuration
// error: the remaining probes are still evaluated, but no manifest is
// returned.
func (b *Builder) Augment(m *board.Manifest) (*board.Manifest, error) {
	debug := m.Debug.Clone()
	if debug.Tools == nil {
		debug.Tools = make(map[string]*board.DebugTool)
	}

	var errs []error
	for _, kind := range Probes {
		name := string(kind)
		if !m.HasProtocol(name) {
			continue
		}
		if _, ok := debug.Tools[name]; ok {
			log.Debug().Str("board", m.ID).Str("probe", name).Msg("Keeping manifest debug tool")
			continue
		}

		tool, err := b.buildTool(kind, m.Label(), debug)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tool.Onboard = debug.IsOnboard(name)
		tool.Default = debug.IsDefault(name)
		debug.Tools[name] = tool
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m.WithDebug(debug)
}

// AugmentAll augments every board of a registry. Boards that fail are left
// out of the result and their errors joined.
func (b *Builder) AugmentAll(reg board.Registry) (map[string]*board.Manifest, error) {
	out := make(map[string]*board.Manifest)
	var errs []error
	for _, id := range reg.IDs() {
		m, err := reg.Board(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		augmented, err := b.Augment(m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[id] = augmented
	}
	return out, errors.Join(errs...)
}

func (b *Builder) buildTool(kind probe.Kind, boardID string, debug board.Debug) (*board.DebugTool, error) {
	switch kind {
	case probe.KindBlackMagic:
		return &board.DebugTool{
			HWIDs:            probe.HWIDs(probe.KindBlackMagic),
			RequireDebugPort: true,
		}, nil
	case probe.KindJLink:
		if debug.JLinkDevice == "" {
			return nil, &MissingDeviceError{Board: boardID}
		}
		return &board.DebugTool{Server: b.jlinkServer(debug.JLinkDevice)}, nil
	default:
		return &board.DebugTool{Server: openocdServer(kind, debug.OpenOCDExtraArgs)}, nil
	}
}

func (b *Builder) jlinkServer(device string) *board.DebugServer {
	executable := jlinkExecutable
	hostOS := b.HostOS
	if hostOS == "" {
		hostOS = runtime.GOOS
	}
	if selector.IsWindows(hostOS) {
		executable = jlinkWindowsExe
	}
	return &board.DebugServer{
		Package:    jlinkPackage,
		Executable: executable,
		Arguments: []string{
			"-singlerun",
			"-if", "SWD",
			"-select", "USB",
			"-device", device,
			"-port", jlinkPort,
		},
		Kind: board.ServerJLink,
	}
}

// openocdServer builds the OpenOCD invocation shared by ST-Link and
// CMSIS-DAP. Board extra arguments come last and are not deduplicated.
func openocdServer(kind probe.Kind, extra []string) *board.DebugServer {
	args := []string{
		"-s", "$PACKAGE_DIR/scripts",
		"-f", fmt.Sprintf("interface/%s.cfg", kind),
	}
	// the transport must be selected before the target script is loaded
	if kind == probe.KindSTLink {
		args = append(args, "-c", stlinkTransport)
	}
	args = append(args, "-f", openocdTarget)
	args = append(args, extra...)
	return &board.DebugServer{
		Package:    openocdPackage,
		Executable: openocdExecutable,
		Arguments:  args,
		Kind:       board.ServerOpenOCD,
	}
}
