package board

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Manifest is the declarative description of a single board. The typed fields
// are authoritative: dotted lookups see edits made to them, and fall back to
// the parsed JSON only for keys without a typed field (build.variant, ...).
type Manifest struct {
	ID         string   `json:"id,omitempty"`
	Name       string   `json:"name"`
	Vendor     string   `json:"vendor,omitempty"`
	URL        string   `json:"url,omitempty"`
	Frameworks []string `json:"frameworks,omitempty"`
	Build      Build    `json:"build"`
	Upload     Upload   `json:"upload"`
	Debug      Debug    `json:"debug"`

	raw []byte
}

// Build holds compiler-facing board settings.
type Build struct {
	Core string `json:"core,omitempty"`
	CPU  string `json:"cpu,omitempty"`
	MCU  string `json:"mcu,omitempty"`
	FCPU string `json:"f_cpu,omitempty"`
	BSP  BSP    `json:"bsp"`
}

// BSP names the board support package variant.
type BSP struct {
	Name string `json:"name,omitempty"`
}

// Upload lists how firmware can be transferred to the board.
type Upload struct {
	Protocol   string   `json:"protocol,omitempty"`
	Protocols  []string `json:"protocols,omitempty"`
	MaxSize    int      `json:"maximum_size,omitempty"`
	MaxRAMSize int      `json:"maximum_ram_size,omitempty"`
}

// Debug carries the board's debug metadata. Tools is populated by the debug
// profile builder for probes the board supports.
type Debug struct {
	Tools            map[string]*DebugTool `json:"tools,omitempty"`
	JLinkDevice      string                `json:"jlink_device,omitempty"`
	SVDPath          string                `json:"svd_path,omitempty"`
	OnboardTools     []string              `json:"onboard_tools,omitempty"`
	DefaultTools     []string              `json:"default_tools,omitempty"`
	OpenOCDExtraArgs []string              `json:"openocd_extra_args,omitempty"`
}

// Decode parses a board manifest from r.
func Decode(r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("board: read manifest: %w", err)
	}
	return Parse(data)
}

// Parse parses a board manifest from raw JSON.
func Parse(data []byte) (*Manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("board: invalid JSON manifest")
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("board: decode manifest: %w", err)
	}
	m.raw = append([]byte(nil), data...)
	return &m, nil
}

// LoadFile parses the board manifest stored at path. A manifest without an id
// takes its file name without extension.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("board: read %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	if m.ID == "" {
		m.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// Label names the board in messages: its id, or its name for manifests that
// never got one.
func (m *Manifest) Label() string {
	if m.ID != "" {
		return m.ID
	}
	return m.Name
}

// Raw returns the JSON document of the manifest: the parsed JSON with the
// typed fields written over it.
func (m *Manifest) Raw() []byte {
	doc, err := m.document()
	if err != nil {
		return m.raw
	}
	return doc
}

type docField struct {
	path  string
	value interface{}
	set   bool
}

func (m *Manifest) fields() []docField {
	d := m.Debug
	return []docField{
		{"id", m.ID, m.ID != ""},
		{"name", m.Name, m.Name != ""},
		{"vendor", m.Vendor, m.Vendor != ""},
		{"url", m.URL, m.URL != ""},
		{"frameworks", m.Frameworks, len(m.Frameworks) > 0},
		{"build.core", m.Build.Core, m.Build.Core != ""},
		{"build.cpu", m.Build.CPU, m.Build.CPU != ""},
		{"build.mcu", m.Build.MCU, m.Build.MCU != ""},
		{"build.f_cpu", m.Build.FCPU, m.Build.FCPU != ""},
		{"build.bsp.name", m.Build.BSP.Name, m.Build.BSP.Name != ""},
		{"upload.protocol", m.Upload.Protocol, m.Upload.Protocol != ""},
		{"upload.protocols", m.Upload.Protocols, len(m.Upload.Protocols) > 0},
		{"upload.maximum_size", m.Upload.MaxSize, m.Upload.MaxSize != 0},
		{"upload.maximum_ram_size", m.Upload.MaxRAMSize, m.Upload.MaxRAMSize != 0},
		{"debug.tools", d.Tools, len(d.Tools) > 0},
		{"debug.jlink_device", d.JLinkDevice, d.JLinkDevice != ""},
		{"debug.svd_path", d.SVDPath, d.SVDPath != ""},
		{"debug.onboard_tools", d.OnboardTools, len(d.OnboardTools) > 0},
		{"debug.default_tools", d.DefaultTools, len(d.DefaultTools) > 0},
		{"debug.openocd_extra_args", d.OpenOCDExtraArgs, len(d.OpenOCDExtraArgs) > 0},
	}
}

// document writes every typed field over a copy of the parsed JSON. Cleared
// fields are deleted so lookups fall back to their defaults.
func (m *Manifest) document() ([]byte, error) {
	doc := []byte("{}")
	if m.raw != nil {
		doc = append([]byte(nil), m.raw...)
	}
	var err error
	for _, f := range m.fields() {
		if f.set {
			doc, err = sjson.SetBytes(doc, f.path, f.value)
		} else {
			doc, err = sjson.DeleteBytes(doc, f.path)
		}
		if err != nil {
			return nil, fmt.Errorf("board: write %s of %s: %w", f.path, m.ID, err)
		}
	}
	return doc, nil
}

// GetString looks up a dotted key such as "upload.protocol" or
// "build.bsp.name". Missing keys yield def.
func (m *Manifest) GetString(path, def string) string {
	res := gjson.GetBytes(m.Raw(), path)
	if !res.Exists() || res.IsArray() || res.IsObject() {
		return def
	}
	return res.String()
}

// GetList looks up a dotted key holding a list. A scalar value is returned as
// a single-element list.
func (m *Manifest) GetList(path string) []string {
	res := gjson.GetBytes(m.Raw(), path)
	if !res.Exists() {
		return nil
	}
	if !res.IsArray() {
		return []string{res.String()}
	}
	var out []string
	for _, item := range res.Array() {
		out = append(out, item.String())
	}
	return out
}

// Clone returns a deep copy of the manifest.
func (m *Manifest) Clone() *Manifest {
	out := *m
	out.Frameworks = cloneStrings(m.Frameworks)
	out.Upload.Protocols = cloneStrings(m.Upload.Protocols)
	out.Debug = m.Debug.Clone()
	if m.raw != nil {
		out.raw = append([]byte(nil), m.raw...)
	}
	return &out
}

// WithDebug returns a copy of the manifest whose debug section is replaced by
// d. The receiver is left untouched.
func (m *Manifest) WithDebug(d Debug) (*Manifest, error) {
	out := m.Clone()
	out.Debug = d.Clone()
	raw, err := out.document()
	if err != nil {
		return nil, err
	}
	out.raw = raw
	return out, nil
}

// HasProtocol reports whether the board declares the upload protocol.
func (m *Manifest) HasProtocol(protocol string) bool {
	return contains(m.Upload.Protocols, protocol)
}

// Clone returns a deep copy of the debug section.
func (d Debug) Clone() Debug {
	out := d
	out.OnboardTools = cloneStrings(d.OnboardTools)
	out.DefaultTools = cloneStrings(d.DefaultTools)
	out.OpenOCDExtraArgs = cloneStrings(d.OpenOCDExtraArgs)
	if d.Tools != nil {
		out.Tools = make(map[string]*DebugTool, len(d.Tools))
		for name, tool := range d.Tools {
			out.Tools[name] = tool.Clone()
		}
	}
	return out
}

// IsOnboard reports whether the probe is soldered onto the board.
func (d Debug) IsOnboard(probe string) bool {
	return contains(d.OnboardTools, probe)
}

// IsDefault reports whether the probe is a default debug tool of the board.
func (d Debug) IsDefault(probe string) bool {
	return contains(d.DefaultTools, probe)
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
