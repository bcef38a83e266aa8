package selector

import (
	"fmt"
	"runtime"

	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/board"
	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/pkgtable"
	"github.com/rs/zerolog/log"
)

// Selector decides which platform packages a build needs.
type Selector struct {
	// Boards resolves the board id of a BuildContext. It may be nil when
	// contexts never name a board.
	Boards board.Registry
	// Deprecated lists boards whose mbed support is frozen at a legacy
	// release. It is only consulted when mbed is requested; nil means no
	// board is deprecated.
	Deprecated func() BoardSet
	// HostOS is the operating system the packages are installed on. Empty
	// means runtime.GOOS.
	HostOS string
	// Rules overrides DefaultRules when set.
	Rules []Rule
}

// Result is the outcome of a resolution pass.
type Result struct {
	Packages   pkgtable.Table      `json:"packages" yaml:"packages"`
	Frameworks pkgtable.Frameworks `json:"frameworks" yaml:"frameworks"`
	// Applied lists the names of the rules that fired, in order.
	Applied []string `json:"applied" yaml:"applied"`
}

// New creates a selector using the default rules.
func New(boards board.Registry, deprecated func() BoardSet) *Selector {
	return &Selector{Boards: boards, Deprecated: deprecated}
}

// Resolve folds the rules over copies of packages and frameworks. The inputs
// are never modified, and resolving an already resolved table with the same
// context yields the same table.
func (s *Selector) Resolve(packages pkgtable.Table, frameworks pkgtable.Frameworks, ctx BuildContext) (*Result, error) {
	state, err := s.newState(packages, frameworks, ctx)
	if err != nil {
		return nil, err
	}

	rules := s.Rules
	if rules == nil {
		rules = DefaultRules()
	}

	result := &Result{}
	for _, rule := range rules {
		if !rule.Applies(state) {
			continue
		}
		rule.Apply(state)
		result.Applied = append(result.Applied, rule.Name)
		log.Debug().Str("rule", rule.Name).Str("board", ctx.Board).Msg("Applied package rule")
	}

	result.Packages = state.Packages
	result.Frameworks = state.Frameworks
	return result, nil
}

// ResolveManifest resolves the tables of a platform manifest.
func (s *Selector) ResolveManifest(m *pkgtable.Manifest, ctx BuildContext) (*Result, error) {
	return s.Resolve(m.Packages, m.Frameworks, ctx)
}

func (s *Selector) newState(packages pkgtable.Table, frameworks pkgtable.Frameworks, ctx BuildContext) (*State, error) {
	state := &State{
		Context:    ctx,
		HostOS:     s.HostOS,
		Packages:   packages.Clone(),
		Frameworks: frameworks.Clone(),
		deprecated: s.Deprecated,
	}
	if state.HostOS == "" {
		state.HostOS = runtime.GOOS
	}

	if ctx.Board == "" {
		return state, nil
	}
	if s.Boards == nil {
		return nil, fmt.Errorf("selector: %w %q (no board registry)", board.ErrUnknownBoard, ctx.Board)
	}
	m, err := s.Boards.Board(ctx.Board)
	if err != nil {
		return nil, fmt.Errorf("selector: %w", err)
	}
	state.Board = m
	state.UploadProtocol = ctx.UploadProtocol
	if state.UploadProtocol == "" {
		state.UploadProtocol = m.GetString("upload.protocol", "")
	}
	return state, nil
}
