package hiring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// RequiredTotal is the number of points every rubric must distribute.
const RequiredTotal = 200

// Criterion is a single rubric item and its point value.
type Criterion struct {
	Name   string
	Points int
}

// Criteria is an ordered rubric. It is encoded as a JSON object whose key order
// follows the slice order.
type Criteria []Criterion

// Total returns the sum of all point values.
func (c Criteria) Total() int {
	total := 0
	for _, item := range c {
		total += item.Points
	}
	return total
}

// Names returns rubric item names in rubric order.
func (c Criteria) Names() []string {
	names := make([]string, 0, len(c))
	for _, item := range c {
		names = append(names, item.Name)
	}
	return names
}

// Map returns the rubric as a name to points map.
func (c Criteria) Map() map[string]int {
	m := make(map[string]int, len(c))
	for _, item := range c {
		m[item.Name] = item.Points
	}
	return m
}

// Lookup returns the points for the named item.
func (c Criteria) Lookup(name string) (int, bool) {
	for _, item := range c {
		if item.Name == name {
			return item.Points, true
		}
	}
	return 0, false
}

// Equal reports whether both rubrics contain the same items in the same order.
func (c Criteria) Equal(other Criteria) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

func (c Criteria) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(item.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", item.Points)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *Criteria) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("evaluation criteria must be a JSON object")
	}

	var out Criteria
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected criteria key %v", keyTok)
		}

		var num json.Number
		if err := dec.Decode(&num); err != nil {
			return fmt.Errorf("criteria %q: %w", name, err)
		}
		points, err := num.Int64()
		if err != nil {
			return fmt.Errorf("criteria %q: points must be an integer: %w", name, err)
		}
		out = append(out, Criterion{Name: name, Points: int(points)})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*c = out
	return nil
}

// CriteriaFromMap builds rubric items from an unordered map. Items are ordered
// by the position of their JSON-encoded key in hint (usually the raw document
// the map was decoded from); names not found in hint go last, alphabetically.
func CriteriaFromMap(m map[string]int, hint string) Criteria {
	type positioned struct {
		Criterion
		pos int
	}

	items := make([]positioned, 0, len(m))
	for name, points := range m {
		pos := -1
		if key, err := marshalNoEscape(name); err == nil {
			pos = strings.Index(hint, string(key))
		}
		items = append(items, positioned{Criterion: Criterion{Name: name, Points: points}, pos: pos})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.pos >= 0 && b.pos >= 0 && a.pos != b.pos:
			return a.pos < b.pos
		case a.pos >= 0 && b.pos < 0:
			return true
		case a.pos < 0 && b.pos >= 0:
			return false
		default:
			return a.Name < b.Name
		}
	})

	out := make(Criteria, 0, len(items))
	for _, item := range items {
		out = append(out, item.Criterion)
	}
	return out
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
