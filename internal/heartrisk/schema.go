package heartrisk

import (
	"errors"
	"fmt"
	"strings"
)

// Schema is the ordered column list the classifier was fit against. It is
// immutable once built.
type Schema struct {
	columns []string
	index   map[string]int
}

func NewSchema(columns []string) (*Schema, error) {
	if len(columns) == 0 {
		return nil, errors.New("schema has no columns")
	}
	s := &Schema{
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, name := range columns {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("schema column %d is empty", i)
		}
		if prev, ok := s.index[name]; ok {
			return nil, fmt.Errorf("schema column %q repeated at %d and %d", name, prev, i)
		}
		s.columns[i] = name
		s.index[name] = i
	}
	return s, nil
}

func (s *Schema) Len() int {
	return len(s.columns)
}

// Columns returns a copy of the column names in order.
func (s *Schema) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

func (s *Schema) Position(column string) (int, bool) {
	i, ok := s.index[column]
	return i, ok
}
