// Package boardfile reads and writes board snapshots as TOML files.
package boardfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/closeboard/internal/board"
)

// ErrEmptyBoard is returned when a board file decodes to no columns.
var ErrEmptyBoard = errors.New("board file has no columns")

// Marshal encodes b as TOML.
func Marshal(b *board.Board) ([]byte, error) {
	data, err := toml.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("marshaling board %s: %w", b.ID, err)
	}
	return data, nil
}

// Unmarshal decodes a TOML board. Unknown keys are an error.
func Unmarshal(data []byte) (*board.Board, error) {
	var b board.Board
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			keys := make([]string, 0, len(serr.Errors))
			for _, e := range serr.Errors {
				keys = append(keys, strings.Join(e.Key(), "."))
			}
			return nil, fmt.Errorf("parsing board: unknown keys %s", strings.Join(keys, ", "))
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("parsing board at line %d column %d: %w", row, col, err)
		}
		return nil, fmt.Errorf("parsing board: %w", err)
	}
	if len(b.Columns) == 0 {
		return nil, ErrEmptyBoard
	}
	return &b, nil
}

// Load reads the board file at path.
func Load(path string) (*board.Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading board file: %w", err)
	}
	b, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Save writes b to path atomically (write temp + rename).
func Save(path string, b *board.Board) error {
	data, err := Marshal(b)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp board file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming board file: %w", err)
	}
	return nil
}
