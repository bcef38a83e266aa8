package debugtools

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/board"
)

func dkManifest() *board.Manifest {
	return &board.Manifest{
		ID:   "nrf52_dk",
		Name: "Nordic nRF52-DK",
		Upload: board.Upload{
			Protocol:  "jlink",
			Protocols: []string{"jlink", "nrfjprog", "stlink", "blackmagic", "cmsis-dap"},
		},
		Debug: board.Debug{
			JLinkDevice:  "nRF52832_xxAA",
			OnboardTools: []string{"jlink"},
			DefaultTools: []string{"jlink"},
		},
	}
}

func indexOf(list []string, value string) int {
	for i, item := range list {
		if item == value {
			return i
		}
	}
	return -1
}

func TestAugmentJLinkExecutablePerHost(t *testing.T) {
	tests := []struct {
		hostOS string
		want   string
	}{
		{hostOS: "linux", want: "JLinkGDBServer"},
		{hostOS: "darwin", want: "JLinkGDBServer"},
		{hostOS: "windows", want: "JLinkGDBServerCL.exe"},
	}
	for _, tt := range tests {
		t.Run(tt.hostOS, func(t *testing.T) {
			out, err := (&Builder{HostOS: tt.hostOS}).Augment(dkManifest())
			if err != nil {
				t.Fatalf("Augment failed: %v", err)
			}
			jlink := out.Debug.Tools["jlink"]
			if jlink == nil || jlink.Server == nil {
				t.Fatalf("jlink tool missing: %+v", out.Debug.Tools)
			}
			if jlink.Server.Executable != tt.want {
				t.Fatalf("executable = %q, want %q", jlink.Server.Executable, tt.want)
			}
			want := []string{"-singlerun", "-if", "SWD", "-select", "USB", "-device", "nRF52832_xxAA", "-port", "2331"}
			if !reflect.DeepEqual(jlink.Server.Arguments, want) {
				t.Fatalf("arguments = %v, want %v", jlink.Server.Arguments, want)
			}
			if jlink.Server.Package != "tool-jlink" || jlink.Server.Kind != board.ServerJLink {
				t.Fatalf("unexpected server: %+v", jlink.Server)
			}
			if !jlink.Onboard || !jlink.Default {
				t.Fatalf("jlink onboard/default = %v/%v, want true/true", jlink.Onboard, jlink.Default)
			}
		})
	}
}

func TestAugmentMissingJLinkDevice(t *testing.T) {
	m := dkManifest()
	m.Debug.JLinkDevice = ""

	out, err := (&Builder{HostOS: "linux"}).Augment(m)
	if out != nil {
		t.Fatalf("expected no manifest, got %+v", out)
	}
	var missing *MissingDeviceError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingDeviceError", err)
	}
	if missing.Board != "nrf52_dk" || !strings.Contains(err.Error(), "nrf52_dk") {
		t.Fatalf("error does not name the board: %v", err)
	}

	parsed, err := board.Parse([]byte(`{"name": "Nordic nRF52-DK", "upload": {"protocols": ["jlink"]}}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	_, err = (&Builder{HostOS: "linux"}).Augment(parsed)
	if !errors.As(err, &missing) || missing.Board != "Nordic nRF52-DK" {
		t.Fatalf("err = %v, want MissingDeviceError naming the board", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "no_device.json")
	if err := os.WriteFile(path, []byte(`{"name": "x", "upload": {"protocols": ["jlink"]}}`), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	loaded, err := board.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	_, err = (&Builder{HostOS: "linux"}).Augment(loaded)
	if !errors.As(err, &missing) || missing.Board != "no_device" {
		t.Fatalf("err = %v, want MissingDeviceError for no_device", err)
	}

	// Boards that do not offer J-Link do not need a device id.
	m.Upload.Protocols = []string{"stlink"}
	if _, err := (&Builder{HostOS: "linux"}).Augment(m); err != nil {
		t.Fatalf("Augment failed without jlink protocol: %v", err)
	}
}

func TestAugmentOpenOCDArguments(t *testing.T) {
	m := dkManifest()
	m.Debug.OpenOCDExtraArgs = []string{"-c", "init", "-f", "target/nrf52.cfg"}

	out, err := NewBuilder().Augment(m)
	if err != nil {
		t.Fatalf("Augment failed: %v", err)
	}

	stlink := out.Debug.Tools["stlink"].Server
	wantST := []string{
		"-s", "$PACKAGE_DIR/scripts",
		"-f", "interface/stlink.cfg",
		"-c", "transport select hla_swd; set WORKAREASIZE 0x4000",
		"-f", "target/nrf52.cfg",
		"-c", "init", "-f", "target/nrf52.cfg",
	}
	if !reflect.DeepEqual(stlink.Arguments, wantST) {
		t.Fatalf("stlink arguments = %v, want %v", stlink.Arguments, wantST)
	}
	transport := indexOf(stlink.Arguments, "transport select hla_swd; set WORKAREASIZE 0x4000")
	target := indexOf(stlink.Arguments, "target/nrf52.cfg")
	if transport < 0 || target < 0 || transport > target {
		t.Fatalf("transport select must precede target config: %v", stlink.Arguments)
	}

	dap := out.Debug.Tools["cmsis-dap"].Server
	wantDAP := []string{
		"-s", "$PACKAGE_DIR/scripts",
		"-f", "interface/cmsis-dap.cfg",
		"-f", "target/nrf52.cfg",
		"-c", "init", "-f", "target/nrf52.cfg",
	}
	if !reflect.DeepEqual(dap.Arguments, wantDAP) {
		t.Fatalf("cmsis-dap arguments = %v, want %v", dap.Arguments, wantDAP)
	}
	for _, server := range []*board.DebugServer{stlink, dap} {
		if server.Executable != "bin/openocd" || server.Package != "tool-openocd" || server.Kind != board.ServerOpenOCD {
			t.Fatalf("unexpected openocd server: %+v", server)
		}
	}
	if out.Debug.Tools["stlink"].Onboard || out.Debug.Tools["stlink"].Default {
		t.Fatalf("stlink must be neither onboard nor default")
	}
}

func TestAugmentBlackMagic(t *testing.T) {
	out, err := NewBuilder().Augment(dkManifest())
	if err != nil {
		t.Fatalf("Augment failed: %v", err)
	}
	bmp := out.Debug.Tools["blackmagic"]
	if bmp.Server != nil || !bmp.RequireDebugPort {
		t.Fatalf("unexpected blackmagic tool: %+v", bmp)
	}
	if want := [][]string{{"0x1d50", "0x6018"}}; !reflect.DeepEqual(bmp.HWIDs, want) {
		t.Fatalf("hwids = %v, want %v", bmp.HWIDs, want)
	}
}

func TestAugmentSkipsUndeclaredProbes(t *testing.T) {
	m := dkManifest()
	m.Upload.Protocols = []string{"nrfjprog", "cmsis-dap"}

	out, err := NewBuilder().Augment(m)
	if err != nil {
		t.Fatalf("Augment failed: %v", err)
	}
	if len(out.Debug.Tools) != 1 || out.Debug.Tools["cmsis-dap"] == nil {
		t.Fatalf("tools = %v, want only cmsis-dap", out.Debug.Tools)
	}
}

func TestAugmentKeepsManualOverride(t *testing.T) {
	m := dkManifest()
	manual := &board.DebugTool{
		Server:  board.NewDebugServer("tool-jlink", "JLinkGDBServer", "-device", "custom"),
		Onboard: false,
	}
	m.Debug.Tools = map[string]*board.DebugTool{"jlink": manual}

	out, err := (&Builder{HostOS: "linux"}).Augment(m)
	if err != nil {
		t.Fatalf("Augment failed: %v", err)
	}
	got := out.Debug.Tools["jlink"]
	if !reflect.DeepEqual(got, manual) {
		t.Fatalf("manual jlink tool changed: %+v", got)
	}
	if got.Onboard {
		t.Fatalf("manual tool must not be re-tagged")
	}
}

func TestAugmentDoesNotMutateInput(t *testing.T) {
	m := dkManifest()
	if _, err := NewBuilder().Augment(m); err != nil {
		t.Fatalf("Augment failed: %v", err)
	}
	if m.Debug.Tools != nil {
		t.Fatalf("input manifest gained tools: %v", m.Debug.Tools)
	}

	parsed, err := board.Parse([]byte(`{"name": "dk", "upload": {"protocols": ["stlink"]}, "debug": {"tools": {}}}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	out, err := NewBuilder().Augment(parsed)
	if err != nil {
		t.Fatalf("Augment failed: %v", err)
	}
	if len(parsed.Debug.Tools) != 0 {
		t.Fatalf("parsed manifest mutated")
	}
	if got := out.GetString("debug.tools.stlink.server.executable", ""); got != "bin/openocd" {
		t.Fatalf("raw manifest not rewritten, executable = %q", got)
	}
}

func TestAugmentIsDeterministic(t *testing.T) {
	b := &Builder{HostOS: "linux"}
	first, err := b.Augment(dkManifest())
	if err != nil {
		t.Fatalf("Augment failed: %v", err)
	}
	second, err := b.Augment(dkManifest())
	if err != nil {
		t.Fatalf("Augment failed: %v", err)
	}
	if !reflect.DeepEqual(first.Debug, second.Debug) {
		t.Fatalf("Augment not deterministic")
	}

	again, err := b.Augment(first)
	if err != nil {
		t.Fatalf("re-Augment failed: %v", err)
	}
	if !reflect.DeepEqual(first.Debug, again.Debug) {
		t.Fatalf("re-augmenting changed the tools")
	}
}

func TestAugmentAll(t *testing.T) {
	reg := board.NewMemoryRegistry()
	reg.Add("nrf52_dk", dkManifest())
	broken := dkManifest()
	broken.ID = ""
	broken.Debug.JLinkDevice = ""
	reg.Add("broken_board", broken)

	out, err := NewBuilder().AugmentAll(reg)
	if err == nil {
		t.Fatalf("expected error for broken_board")
	}
	var missing *MissingDeviceError
	if !errors.As(err, &missing) || missing.Board != "broken_board" {
		t.Fatalf("err = %v, want MissingDeviceError for broken_board", err)
	}
	if _, ok := out["nrf52_dk"]; !ok || len(out) != 1 {
		t.Fatalf("result = %v, want only nrf52_dk", out)
	}
}
