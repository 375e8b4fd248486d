package service

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// LabelCatalog maps class indices to display names. Position i corresponds to
// position i of the network's score vector.
type LabelCatalog struct {
	names []string
}

func NewLabelCatalog(names []string) *LabelCatalog {
	return &LabelCatalog{names: append([]string(nil), names...)}
}

func (c *LabelCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

func (c *LabelCatalog) Label(i int) string {
	return c.names[i]
}

// Labels returns a copy of the display names in index order.
func (c *LabelCatalog) Labels() []string {
	return append([]string(nil), c.names...)
}

// LoadLabelsFile reads a synset-style label file, one class per line.
func LoadLabelsFile(path string) (*LabelCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels: %w", err)
	}
	defer f.Close()
	catalog, err := LoadLabels(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return catalog, nil
}

// LoadLabels parses lines of the form "<id> <name>[,<alias>...]" and keeps
// the first name of each line.
func LoadLabels(r io.Reader) (*LabelCatalog, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return nil, fmt.Errorf("%w: no label lines", ErrMalformedLabelLine)
	}

	lines := strings.Split(text, "\n")
	names := make([]string, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			return nil, fmt.Errorf("%w: line %d is blank", ErrMalformedLabelLine, i+1)
		}
		sp := strings.IndexByte(line, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("%w: line %d has no space: %q", ErrMalformedLabelLine, i+1, line)
		}
		name := line[sp+1:]
		if comma := strings.IndexByte(name, ','); comma >= 0 {
			name = name[:comma]
		}
		names = append(names, name)
	}
	return &LabelCatalog{names: names}, nil
}
