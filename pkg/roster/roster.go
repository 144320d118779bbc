package roster

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arnavshah/duty-rotation-go/pkg/models"
)

// DefaultDelimiter separates the members of a group entry on one line
const DefaultDelimiter = ","

// ErrMalformedEntry is matched by every *MalformedEntryError
var ErrMalformedEntry = errors.New("malformed roster entry")

// MalformedEntryError describes a roster line that can never be assigned as a unit
type MalformedEntryError struct {
	Line      int
	Entry     string
	Size      int
	ShiftSize int
	Reason    string
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("malformed roster entry on line %d (%q, %d members, shift size %d): %s",
		e.Line, e.Entry, e.Size, e.ShiftSize, e.Reason)
}

// Is lets errors.Is(err, ErrMalformedEntry) match
func (e *MalformedEntryError) Is(target error) bool {
	return target == ErrMalformedEntry
}

// ReadLines returns the lines of r with trailing whitespace removed
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), " \t\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// LoadLines reads path line by line. A missing file yields no lines and no error
// so the caller can report an empty roster instead of a file error.
func LoadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f)
}

// Parse turns raw lines into entries. Blank lines are skipped; line numbers are 1-based.
func Parse(lines []string, delimiter string) []models.Entry {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	entries := make([]models.Entry, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, delimiter)
		members := make([]string, 0, len(parts))
		for _, p := range parts {
			members = append(members, strings.TrimSpace(p))
		}
		entries = append(entries, models.Entry{Line: i + 1, Members: members})
	}
	return entries
}

// Validate checks roster authoring constraints: no group is larger than a shift,
// no member name is empty and no member appears in more than one place.
func Validate(entries []models.Entry, shiftSize int) error {
	seen := make(map[string]int)
	for _, e := range entries {
		bad := func(reason string) error {
			return &MalformedEntryError{
				Line:      e.Line,
				Entry:     e.String(),
				Size:      e.Size(),
				ShiftSize: shiftSize,
				Reason:    reason,
			}
		}

		if e.Size() > shiftSize {
			return bad("group is larger than a shift")
		}
		for _, m := range e.Members {
			if m == "" {
				return bad("empty member name")
			}
			if line, ok := seen[m]; ok {
				return bad(fmt.Sprintf("%q already listed on line %d", m, line))
			}
			seen[m] = e.Line
		}
	}
	return nil
}

// Load reads, parses and validates the roster at path
func Load(path, delimiter string, shiftSize int) ([]models.Entry, error) {
	lines, err := LoadLines(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}
	entries := Parse(lines, delimiter)
	if err := Validate(entries, shiftSize); err != nil {
		return nil, err
	}
	return entries, nil
}

// LoadContext reads recency seed names, one per line. Blank lines are ignored.
func LoadContext(path string) ([]string, error) {
	lines, err := LoadLines(path)
	if err != nil {
		return nil, fmt.Errorf("read context %s: %w", path, err)
	}
	return Names(lines), nil
}

// Names returns the non-blank lines, trimmed
func Names(lines []string) []string {
	names := make([]string, 0, len(lines))
	for _, l := range lines {
		if n := strings.TrimSpace(l); n != "" {
			names = append(names, n)
		}
	}
	return names
}
