package debugtools

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceNRF52/pkg/board"
	"github.com/rs/zerolog/log"
)

// DefaultJLinkSpeed is the adapter speed (kHz) passed to the J-Link server
// when a speed was requested without a value.
const DefaultJLinkSpeed = "4000"

// Options is the server configuration of one debug session.
type Options struct {
	// Speed is the requested adapter speed; nil when none was requested.
	Speed  *string            `json:"speed,omitempty" yaml:"speed,omitempty"`
	Server *board.DebugServer `json:"server" yaml:"server"`
}

// Refine derives session options from a board's static server options. The
// static options are shared between sessions and are never modified.
//
// With no speed requested the copy is returned unchanged. OpenOCD servers get
// an "adapter speed" command, J-Link servers a -speed flag falling back to
// DefaultJLinkSpeed for an empty value. Other servers ignore the request.
func Refine(server *board.DebugServer, speed *string) Options {
	opts := Options{Server: server.Clone()}
	if opts.Server == nil {
		return opts
	}
	opts.Server.Kind = opts.Server.Classify()
	if speed == nil {
		return opts
	}
	value := *speed
	opts.Speed = &value

	switch opts.Server.Kind {
	case board.ServerOpenOCD:
		if value == "" {
			return opts
		}
		opts.Server.Arguments = append(opts.Server.Arguments, "-c", "adapter speed "+value)
	case board.ServerJLink:
		if value == "" {
			value = DefaultJLinkSpeed
		}
		opts.Server.Arguments = append(opts.Server.Arguments, "-speed", value)
	default:
		log.Warn().
			Str("executable", opts.Server.Executable).
			Str("speed", value).
			Msg("Adapter speed not supported by debug server, ignoring")
	}
	return opts
}

// RefineSpeed is Refine for callers holding a plain string, where an empty
// string means no speed was requested.
func RefineSpeed(server *board.DebugServer, speed string) Options {
	if speed == "" {
		return Refine(server, nil)
	}
	return Refine(server, &speed)
}

// ToolOptions refines the server of a board's debug tool.
func ToolOptions(m *board.Manifest, tool string, speed *string) (Options, error) {
	t, ok := m.Debug.Tools[tool]
	if !ok || t.Server == nil {
		return Options{}, &UnknownToolError{Board: m.ID, Tool: tool}
	}
	return Refine(t.Server, speed), nil
}

// UnknownToolError reports a debug tool the board does not define or that has
// no server to launch.
type UnknownToolError struct {
	Board string
	Tool  string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("debugtools: board %q has no debug server for tool %q", e.Board, e.Tool)
}
