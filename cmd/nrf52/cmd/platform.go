package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/board"
	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/debugtools"
	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/pkgtable"
	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/projectconf"
	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/selector"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

func loadPlatform() (*pkgtable.Manifest, error) {
	m, err := pkgtable.LoadDir(settings.PlatformDir)
	if err != nil {
		return nil, fmt.Errorf("load platform: %w", err)
	}
	log.Debug().Str("platform", m.Name).Int("packages", len(m.Packages)).Msg("Loaded platform manifest")
	return m, nil
}

func loadBoards() (*board.MemoryRegistry, error) {
	reg := board.NewMemoryRegistry()
	if err := reg.LoadDir(settings.BoardsPath()); err != nil {
		return nil, fmt.Errorf("load boards: %w", err)
	}
	log.Debug().Str("dir", settings.BoardsPath()).Int("boards", len(reg.IDs())).Msg("Loaded board manifests")
	return reg, nil
}

func newSelector(reg board.Registry) *selector.Selector {
	sel := selector.New(reg, selector.DeprecatedFromFile(selector.DeprecatedBoardsPath(settings.PlatformDir)))
	sel.HostOS = settings.HostOS
	return sel
}

func newBuilder() *debugtools.Builder {
	return &debugtools.Builder{HostOS: settings.HostOS}
}

// projectEnv parses a project file and looks up one of its environments.
func projectEnv(path, name string) (*projectconf.Env, error) {
	parser, err := projectconf.NewParser()
	if err != nil {
		return nil, err
	}
	project, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return project.Env(name)
}

// augmentedBoard loads one board and fills in its debug tools.
func augmentedBoard(id string) (*board.Manifest, error) {
	reg, err := loadBoards()
	if err != nil {
		return nil, err
	}
	m, err := reg.Board(id)
	if err != nil {
		return nil, err
	}
	return newBuilder().Augment(m)
}

// writeStructured prints v as JSON or YAML depending on --output. It returns
// false for text output so the caller can print its own rendering.
func writeStructured(v interface{}) (bool, error) {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
