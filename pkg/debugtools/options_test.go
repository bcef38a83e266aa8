package debugtools

import (
	"errors"
	"reflect"
	"testing"

	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/board"
)

func strPtr(s string) *string { return &s }

func tail(list []string, n int) []string {
	if len(list) < n {
		return list
	}
	return list[len(list)-n:]
}

func TestRefineOpenOCD(t *testing.T) {
	static := board.NewDebugServer("tool-openocd", "bin/openocd", "-f", "interface/stlink.cfg")
	opts := Refine(static, strPtr("2000"))

	if got, want := tail(opts.Server.Arguments, 2), []string{"-c", "adapter speed 2000"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("arguments end = %v, want %v", got, want)
	}
	if opts.Speed == nil || *opts.Speed != "2000" {
		t.Fatalf("speed = %v, want 2000", opts.Speed)
	}
	if len(static.Arguments) != 2 {
		t.Fatalf("static arguments mutated: %v", static.Arguments)
	}
}

func TestRefineJLink(t *testing.T) {
	static := board.NewDebugServer("tool-jlink", "JLinkGDBServer", "-port", "2331")

	opts := Refine(static, strPtr(""))
	if got, want := tail(opts.Server.Arguments, 2), []string{"-speed", "4000"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("arguments end = %v, want %v", got, want)
	}

	opts = Refine(static, strPtr("12000"))
	if got, want := tail(opts.Server.Arguments, 2), []string{"-speed", "12000"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("arguments end = %v, want %v", got, want)
	}

	win := board.NewDebugServer("tool-jlink", "JLinkGDBServerCL.exe")
	opts = RefineSpeed(win, "1000")
	if got, want := opts.Server.Arguments, []string{"-speed", "1000"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("arguments = %v, want %v", got, want)
	}

	if !reflect.DeepEqual(static.Arguments, []string{"-port", "2331"}) {
		t.Fatalf("static arguments mutated: %v", static.Arguments)
	}
}

func TestRefineWithoutSpeed(t *testing.T) {
	for _, exe := range []string{"bin/openocd", "JLinkGDBServer", "unknown-debugger"} {
		static := board.NewDebugServer("", exe, "-x")
		opts := Refine(static, nil)
		if opts.Speed != nil {
			t.Fatalf("%s: speed set without request", exe)
		}
		if !reflect.DeepEqual(opts.Server, static) {
			t.Fatalf("%s: server changed without speed: %+v", exe, opts.Server)
		}
		if opts.Server == static {
			t.Fatalf("%s: Refine returned the shared server", exe)
		}
		if got := RefineSpeed(static, ""); !reflect.DeepEqual(got.Server.Arguments, []string{"-x"}) {
			t.Fatalf("%s: RefineSpeed(\"\") = %v", exe, got.Server.Arguments)
		}
	}
}

func TestRefineUnknownServerDropsSpeed(t *testing.T) {
	static := board.NewDebugServer("", "unknown-debugger", "--port", "3333")
	opts := Refine(static, strPtr("2000"))
	if !reflect.DeepEqual(opts.Server.Arguments, static.Arguments) {
		t.Fatalf("arguments = %v, want %v", opts.Server.Arguments, static.Arguments)
	}
}

func TestRefineUsesTaggedKind(t *testing.T) {
	// A server built with an explicit kind is refined by that kind, whatever
	// its executable is called.
	static := &board.DebugServer{Executable: "gdbserver-wrapper", Kind: board.ServerOpenOCD}
	opts := Refine(static, strPtr("500"))
	if got, want := opts.Server.Arguments, []string{"-c", "adapter speed 500"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("arguments = %v, want %v", got, want)
	}
}

func TestRefineClassifiesLiteralServer(t *testing.T) {
	static := &board.DebugServer{Executable: "bin/openocd", Arguments: []string{"-f", "target/nrf52.cfg"}}
	opts := Refine(static, strPtr("2000"))
	if got, want := tail(opts.Server.Arguments, 2), []string{"-c", "adapter speed 2000"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("arguments end = %v, want %v", got, want)
	}
	if opts.Server.Kind != board.ServerOpenOCD {
		t.Fatalf("refined kind = %v, want openocd", opts.Server.Kind)
	}
	if static.Kind != board.ServerUnclassified || len(static.Arguments) != 2 {
		t.Fatalf("static server mutated: %+v", static)
	}

	jlink := Refine(&board.DebugServer{Executable: "JLinkGDBServerCL.exe"}, strPtr(""))
	if got, want := jlink.Server.Arguments, []string{"-speed", "4000"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("arguments = %v, want %v", got, want)
	}
}

func TestToolOptions(t *testing.T) {
	out, err := (&Builder{HostOS: "linux"}).Augment(dkManifest())
	if err != nil {
		t.Fatalf("Augment failed: %v", err)
	}

	opts, err := ToolOptions(out, "stlink", strPtr("1800"))
	if err != nil {
		t.Fatalf("ToolOptions failed: %v", err)
	}
	if got := tail(opts.Server.Arguments, 1)[0]; got != "adapter speed 1800" {
		t.Fatalf("last argument = %q", got)
	}
	if got := tail(out.Debug.Tools["stlink"].Server.Arguments, 1)[0]; got != "target/nrf52.cfg" {
		t.Fatalf("board descriptor mutated, last argument = %q", got)
	}

	var unknown *UnknownToolError
	if _, err := ToolOptions(out, "blackmagic", nil); !errors.As(err, &unknown) {
		t.Fatalf("blackmagic has no server, err = %v", err)
	}
	if _, err := ToolOptions(out, "picoprobe", nil); !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownToolError", err)
	}
}
