package board

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerKind identifies the family of GDB server a debug tool launches.
// Argument shapes differ between families. The zero value means the server
// has not been classified yet; see DebugServer.Classify.
type ServerKind int

const (
	ServerUnclassified ServerKind = iota
	ServerUnknown
	ServerOpenOCD
	ServerJLink
)

func (k ServerKind) String() string {
	switch k {
	case ServerUnclassified:
		return "unclassified"
	case ServerOpenOCD:
		return "openocd"
	case ServerJLink:
		return "jlink"
	default:
		return "unknown"
	}
}

// KindOf classifies a server executable by name. It is only used for servers
// that come from a manifest or a struct literal rather than from the profile
// builder.
func KindOf(executable string) ServerKind {
	name := strings.ToLower(executable)
	switch {
	case strings.Contains(name, "openocd"):
		return ServerOpenOCD
	case strings.Contains(name, "jlink"):
		return ServerJLink
	default:
		return ServerUnknown
	}
}

// DebugServer describes how to start the GDB server for a probe.
type DebugServer struct {
	Package    string     `json:"package,omitempty" yaml:"package,omitempty"`
	Executable string     `json:"executable" yaml:"executable"`
	Arguments  []string   `json:"arguments" yaml:"arguments"`
	Kind       ServerKind `json:"-" yaml:"-"`
}

// NewDebugServer builds server options for an executable, classifying it by
// name.
func NewDebugServer(pkg, executable string, args ...string) *DebugServer {
	return &DebugServer{
		Package:    pkg,
		Executable: executable,
		Arguments:  args,
		Kind:       KindOf(executable),
	}
}

// UnmarshalJSON decodes a server entry and classifies its executable once.
func (s *DebugServer) UnmarshalJSON(data []byte) error {
	type plain DebugServer
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*s = DebugServer(decoded)
	s.Kind = KindOf(s.Executable)
	return nil
}

// UnmarshalYAML decodes a server entry and classifies its executable once.
func (s *DebugServer) UnmarshalYAML(value *yaml.Node) error {
	type plain DebugServer
	var decoded plain
	if err := value.Decode(&decoded); err != nil {
		return err
	}
	*s = DebugServer(decoded)
	s.Kind = KindOf(s.Executable)
	return nil
}

// Classify returns the server kind, deriving it from the executable name when
// the server was never classified.
func (s *DebugServer) Classify() ServerKind {
	if s.Kind == ServerUnclassified {
		return KindOf(s.Executable)
	}
	return s.Kind
}

// Clone returns a deep copy of the server options.
func (s *DebugServer) Clone() *DebugServer {
	if s == nil {
		return nil
	}
	out := *s
	out.Arguments = cloneStrings(s.Arguments)
	return &out
}

// DebugTool is the per-probe debug descriptor stored under debug.tools.
type DebugTool struct {
	Server           *DebugServer `json:"server,omitempty" yaml:"server,omitempty"`
	HWIDs            [][]string   `json:"hwids,omitempty" yaml:"hwids,omitempty"`
	RequireDebugPort bool         `json:"require_debug_port,omitempty" yaml:"require_debug_port,omitempty"`
	Onboard          bool         `json:"onboard" yaml:"onboard"`
	Default          bool         `json:"default" yaml:"default"`
}

// Clone returns a deep copy of the tool.
func (t *DebugTool) Clone() *DebugTool {
	if t == nil {
		return nil
	}
	out := *t
	out.Server = t.Server.Clone()
	if t.HWIDs != nil {
		out.HWIDs = make([][]string, len(t.HWIDs))
		for i, pair := range t.HWIDs {
			out.HWIDs[i] = cloneStrings(pair)
		}
	}
	return &out
}
