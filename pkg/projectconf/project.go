package projectconf

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/selector"
	"github.com/alecthomas/participle/v2"
)

const (
	platformioSection = "platformio"
	commonEnvSection  = "env"
	envPrefix         = "env:"
)

// Parser reads platformio.ini style project files.
type Parser struct {
	parser *participle.Parser[iniFile]
}

// NewParser creates a new project file parser.
func NewParser() (*Parser, error) {
	parser, err := participle.Build[iniFile](
		participle.Lexer(iniLexer),
		participle.Elide("Comment", "Whitespace"),
	)
	if err != nil {
		return nil, fmt.Errorf("projectconf: failed to build parser: %w", err)
	}
	return &Parser{parser: parser}, nil
}

// Parse parses a project file from a reader.
func (p *Parser) Parse(r io.Reader) (*Project, error) {
	file, err := p.parser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("projectconf: parse error: %w", err)
	}
	return newProject(file)
}

// ParseString parses a project file held in a string.
func (p *Parser) ParseString(input string) (*Project, error) {
	file, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("projectconf: parse error: %w", err)
	}
	return newProject(file)
}

// ParseFile parses the project file at path.
func (p *Parser) ParseFile(path string) (*Project, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("projectconf: failed to open file: %w", err)
	}
	defer file.Close()

	return p.Parse(file)
}

// Project is a parsed project file.
type Project struct {
	// Platformio holds the options of the [platformio] section.
	Platformio map[string]string
	envs       map[string]*Env
	order      []string
}

// Env is one [env:NAME] section, with options of the shared [env] section
// filled in where the section does not set them.
type Env struct {
	Name    string
	Options map[string]string
}

func newProject(file *iniFile) (*Project, error) {
	p := &Project{
		Platformio: map[string]string{},
		envs:       map[string]*Env{},
	}
	common := map[string]string{}
	for _, section := range file.Sections {
		name := strings.TrimSpace(strings.Trim(section.Header, "[]"))
		options := map[string]string{}
		for _, entry := range section.Options {
			options[strings.ToLower(entry.Key)] = entry.value()
		}

		switch {
		case name == platformioSection:
			for k, v := range options {
				p.Platformio[k] = v
			}
		case name == commonEnvSection:
			for k, v := range options {
				common[k] = v
			}
		case strings.HasPrefix(name, envPrefix):
			envName := strings.TrimSpace(strings.TrimPrefix(name, envPrefix))
			if envName == "" {
				return nil, fmt.Errorf("projectconf: empty environment name in [%s]", name)
			}
			if _, dup := p.envs[envName]; dup {
				return nil, fmt.Errorf("projectconf: duplicate environment %q", envName)
			}
			p.envs[envName] = &Env{Name: envName, Options: options}
			p.order = append(p.order, envName)
		}
	}
	for _, env := range p.envs {
		for k, v := range common {
			if _, ok := env.Options[k]; !ok {
				env.Options[k] = v
			}
		}
	}
	return p, nil
}

func (e *iniEntry) value() string {
	parts := []string{strings.TrimSpace(strings.TrimPrefix(e.Value, "="))}
	for _, line := range e.Continuation {
		parts = append(parts, strings.TrimSpace(line))
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// EnvNames returns the environment names in file order.
func (p *Project) EnvNames() []string {
	return append([]string(nil), p.order...)
}

// DefaultEnvs returns [platformio] default_envs, or every environment when
// it is not set.
func (p *Project) DefaultEnvs() []string {
	if envs := SplitList(p.Platformio["default_envs"]); len(envs) > 0 {
		return envs
	}
	return p.EnvNames()
}

// Env looks up an environment. An empty name selects the first default
// environment.
func (p *Project) Env(name string) (*Env, error) {
	if name == "" {
		defaults := p.DefaultEnvs()
		if len(defaults) == 0 {
			return nil, fmt.Errorf("projectconf: project defines no environments")
		}
		name = defaults[0]
	}
	env, ok := p.envs[name]
	if !ok {
		known := p.EnvNames()
		sort.Strings(known)
		return nil, fmt.Errorf("projectconf: unknown environment %q (have %s)", name, strings.Join(known, ", "))
	}
	return env, nil
}

// Option returns the value of an option, or "" when unset.
func (e *Env) Option(key string) string {
	return e.Options[strings.ToLower(key)]
}

// BuildContext converts the environment into resolver input. Targets given
// here replace the environment's "targets" option.
func (e *Env) BuildContext(targets ...string) selector.BuildContext {
	if len(targets) == 0 {
		targets = SplitList(e.Option("targets"))
	}
	return selector.BuildContext{
		Board:          e.Option("board"),
		Frameworks:     SplitList(e.Option("framework")),
		Targets:        targets,
		UploadProtocol: e.Option("upload_protocol"),
		DebugTool:      e.Option("debug_tool"),
		DebugSpeed:     e.Option("debug_speed"),
	}
}

// SplitList splits a multi-value option on commas and newlines.
func SplitList(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	var out []string
	for _, field := range fields {
		if field = strings.TrimSpace(field); field != "" {
			out = append(out, field)
		}
	}
	return out
}
