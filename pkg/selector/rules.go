package selector

import (
	"strings"

	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/board"
	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/pkgtable"
)

// Package and framework identifiers touched by the rules.
const (
	PkgToolchain       = "toolchain-gccarmnoneeabi"
	PkgMbed            = "framework-mbed"
	PkgNRFJProg        = "tool-nrfjprog"
	PkgJLink           = "tool-jlink"
	PkgGPerf           = "tool-gperf"
	PkgZephyrPrefix    = "framework-zephyr-"
	PkgArduinoMbed     = "framework-arduino-mbed"
	PkgArduinoAdafruit = "framework-arduinoadafruitnrf52"

	FrameworkArduino = "arduino"
	FrameworkMbed    = "mbed"
	FrameworkZephyr  = "zephyr"
)

// Version pins applied by the rules.
const (
	MbedLegacyVersion      = "~6.51506.0"
	MbedToolchainVersion   = "~1.90201.0"
	ZephyrToolchainVersion = "~1.80201.0"
)

const (
	defaultBSP       = "nrf5"
	nano33bleBoard   = "nano33ble"
	nano33bleScript  = "builder/frameworks/arduino/mbed-core/arduino-core-mbed.py"
	nrfjprogProtocol = "nrfjprog"
	jlinkMarker      = "jlink"
	targetBootloader = "bootloader"
	targetErase      = "erase"
)

var zephyrAuxPackages = []string{"tool-cmake", "tool-dtc", "tool-ninja"}

// State is the working copy a rule reads and rewrites.
type State struct {
	Context BuildContext
	// Board is nil when the context names no board.
	Board *board.Manifest
	// UploadProtocol is the explicit protocol or, failing that, the board's
	// default one. It stays empty when no board is known.
	UploadProtocol string
	HostOS         string
	Packages       pkgtable.Table
	Frameworks     pkgtable.Frameworks

	deprecated func() BoardSet
}

// Rule is one (predicate, transform) pair of the resolution fold.
type Rule struct {
	Name    string
	Applies func(s *State) bool
	Apply   func(s *State)
}

// DefaultRules returns the nRF52 platform rules in evaluation order. Later
// rules win when two touch the same package.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "adafruit-bsp", Applies: isAdafruitBSP, Apply: useAdafruitCore},
		{Name: "mbed", Applies: wantsMbed, Apply: pinMbedPackages},
		{Name: "zephyr", Applies: wantsZephyr, Apply: activateZephyr},
		{Name: "nano33ble", Applies: isNano33BLE, Apply: useArduinoMbedCore},
		{Name: "nrfjprog", Applies: always, Apply: configureNRFJProg},
		{Name: "jlink", Applies: jlinkUnused, Apply: dropJLink},
	}
}

func always(*State) bool { return true }

func isAdafruitBSP(s *State) bool {
	return s.Board != nil && s.Board.GetString("build.bsp.name", defaultBSP) == "adafruit"
}

func useAdafruitCore(s *State) {
	fw := s.Frameworks[FrameworkArduino]
	fw.Package = PkgArduinoAdafruit
	s.Frameworks[FrameworkArduino] = fw
}

func wantsMbed(s *State) bool {
	return s.Board != nil && s.Context.HasFramework(FrameworkMbed)
}

func pinMbedPackages(s *State) {
	if s.deprecated != nil && s.deprecated().Contains(s.Context.Board) {
		s.Packages.Pin(PkgMbed, MbedLegacyVersion)
	}
	s.Packages.Pin(PkgToolchain, MbedToolchainVersion)
}

func wantsZephyr(s *State) bool {
	return s.Board != nil && s.Context.HasFramework(FrameworkZephyr)
}

func activateZephyr(s *State) {
	for _, name := range s.Packages.WithPrefix(PkgZephyrPrefix) {
		s.Packages.Require(name)
	}
	for _, name := range zephyrAuxPackages {
		s.Packages.Require(name)
	}
	s.Packages.Pin(PkgToolchain, ZephyrToolchainVersion)
	// gperf is only packaged for POSIX hosts
	if !IsWindows(s.HostOS) {
		s.Packages.Require(PkgGPerf)
	}
}

func isNano33BLE(s *State) bool {
	return s.Board != nil && s.Context.Board == nano33bleBoard
}

func useArduinoMbedCore(s *State) {
	s.Packages.Pin(PkgToolchain, ZephyrToolchainVersion)
	s.Frameworks[FrameworkArduino] = pkgtable.Framework{
		Package: PkgArduinoMbed,
		Script:  nano33bleScript,
	}
}

func configureNRFJProg(s *State) {
	if s.Context.HasTarget(targetBootloader, targetErase) {
		s.Packages.Require(PkgNRFJProg)
		return
	}
	if s.UploadProtocol != "" && s.UploadProtocol != nrfjprogProtocol {
		s.Packages.Remove(PkgNRFJProg)
	}
}

// JLinkNeeded reports whether any protocol or debug tool setting mentions
// J-Link, either in the build variables or in the board's defaults.
func JLinkNeeded(ctx BuildContext, m *board.Manifest) bool {
	if strings.Contains(ctx.UploadProtocol, jlinkMarker) || strings.Contains(ctx.DebugTool, jlinkMarker) {
		return true
	}
	if m == nil {
		return false
	}
	for _, key := range []string{"debug.default_tools", "upload.protocol"} {
		for _, value := range m.GetList(key) {
			if strings.Contains(value, jlinkMarker) {
				return true
			}
		}
	}
	return false
}

func jlinkUnused(s *State) bool {
	return !JLinkNeeded(s.Context, s.Board)
}

func dropJLink(s *State) {
	s.Packages.Remove(PkgJLink)
}

// IsWindows reports whether a host OS / system type string denotes Windows.
func IsWindows(hostOS string) bool {
	return strings.Contains(strings.ToLower(hostOS), "windows")
}
