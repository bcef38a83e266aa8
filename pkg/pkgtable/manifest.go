package pkgtable

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest files probed by LoadDir, in order.
var manifestNames = []string{"platform.yaml", "platform.yml", "platform.json"}

// Manifest is the platform description owning the package and framework
// tables.
type Manifest struct {
	Name        string     `yaml:"name" json:"name"`
	Title       string     `yaml:"title,omitempty" json:"title,omitempty"`
	Version     string     `yaml:"version,omitempty" json:"version,omitempty"`
	Frameworks  Frameworks `yaml:"frameworks" json:"frameworks"`
	Packages    Table      `yaml:"packages" json:"packages"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
}

// Decode reads a manifest from r. JSON input is accepted as well since it is
// valid YAML.
func Decode(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("pkgtable: empty manifest")
		}
		return nil, fmt.Errorf("pkgtable: decode manifest: %w", err)
	}
	if m.Packages == nil {
		m.Packages = Table{}
	}
	if m.Frameworks == nil {
		m.Frameworks = Frameworks{}
	}
	return &m, nil
}

// LoadManifest parses the platform manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pkgtable: open %s: %w", path, err)
	}
	defer file.Close()

	m, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return m, nil
}

// LoadDir looks for platform.yaml, platform.yml or platform.json inside dir
// and loads the first one found.
func LoadDir(dir string) (*Manifest, error) {
	for _, name := range manifestNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadManifest(path)
		}
	}
	return nil, fmt.Errorf("pkgtable: no platform manifest in %s", dir)
}
