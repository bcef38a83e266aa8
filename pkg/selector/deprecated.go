package selector

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// BoardSet is a set of board ids.
type BoardSet map[string]struct{}

// NewBoardSet builds a set from ids.
func NewBoardSet(ids ...string) BoardSet {
	set := make(BoardSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains reports whether id is in the set. A nil set contains nothing.
func (s BoardSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// DeprecatedBoardsPath is the location of the mbed deprecation list inside a
// platform directory.
func DeprecatedBoardsPath(platformDir string) string {
	return filepath.Join(platformDir, "misc", "mbed_deprecated_boards.json")
}

// LoadDeprecatedBoards reads a JSON array of board ids. Any failure to read or
// parse the file yields an empty set: a board is only treated as deprecated
// when the list says so.
func LoadDeprecatedBoards(path string) BoardSet {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("No mbed deprecation list")
		return BoardSet{}
	}
	if !gjson.ValidBytes(data) {
		log.Debug().Str("path", path).Msg("Ignoring malformed mbed deprecation list")
		return BoardSet{}
	}
	set := BoardSet{}
	doc := gjson.ParseBytes(data)
	if doc.IsObject() {
		doc.ForEach(func(key, _ gjson.Result) bool {
			set[key.String()] = struct{}{}
			return true
		})
		return set
	}
	for _, item := range doc.Array() {
		if item.Type == gjson.String {
			set[item.String()] = struct{}{}
		}
	}
	return set
}

// DeprecatedFromFile returns a loader reading the list at path on demand.
func DeprecatedFromFile(path string) func() BoardSet {
	return func() BoardSet {
		return LoadDeprecatedBoards(path)
	}
}
