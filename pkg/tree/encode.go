package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/codeGROOVE-dev/tzsniff/pkg/testpoint"
)

// Field names of an internal node, written in this order.
const (
	fieldTestPoint = "testPoint"
	fieldChildren  = "children"
)

// ErrMalformedTree is returned when a document does not describe a tree.
var ErrMalformedTree = errors.New("malformed tree document")

// FormatOffset renders an offset as an integer literal when it is integral
// and as the shortest round-tripping decimal otherwise.
func FormatOffset(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MarshalCompact renders n with no insignificant whitespace.
func MarshalCompact(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeNode(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalPretty renders n with two-space indentation and a trailing newline.
func MarshalPretty(n Node) ([]byte, error) {
	compact, err := MarshalCompact(n)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("indenting tree: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeNode(buf *bytes.Buffer, n Node) error {
	switch cur := n.(type) {
	case *Leaf:
		return writeString(buf, cur.Zone)
	case *Internal:
		buf.WriteByte('{')
		if err := writeString(buf, fieldTestPoint); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeString(buf, cur.TestPoint.String()); err != nil {
			return err
		}
		buf.WriteByte(',')
		if err := writeString(buf, fieldChildren); err != nil {
			return err
		}
		buf.WriteString(":{")
		for i, v := range SortedOffsets(cur.Children) {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, FormatOffset(v)); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeNode(buf, cur.Children[v]); err != nil {
				return err
			}
		}
		buf.WriteString("}}")
		return nil
	default:
		return fmt.Errorf("unexpected node type %T", n)
	}
}

func writeString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", s, err)
	}
	buf.Write(b)
	return nil
}

// Unmarshal parses a tree document in either rendering.
func Unmarshal(data []byte) (Node, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a tree document from r.
func Decode(r io.Reader) (Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding tree: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after tree: %w", ErrMalformedTree)
	}
	return fromDocument(doc, "$")
}

func fromDocument(doc any, path string) (Node, error) {
	switch v := doc.(type) {
	case string:
		return &Leaf{Zone: v}, nil
	case map[string]any:
		if len(v) != 2 {
			return nil, fmt.Errorf("%s: internal node has %d fields, want 2: %w", path, len(v), ErrMalformedTree)
		}
		raw, ok := v[fieldTestPoint].(string)
		if !ok {
			return nil, fmt.Errorf("%s: missing %s: %w", path, fieldTestPoint, ErrMalformedTree)
		}
		point, err := testpoint.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		rawChildren, ok := v[fieldChildren].(map[string]any)
		if !ok || len(rawChildren) == 0 {
			return nil, fmt.Errorf("%s: missing %s: %w", path, fieldChildren, ErrMalformedTree)
		}
		children := make(map[float64]Node, len(rawChildren))
		for key, rawChild := range rawChildren {
			offset, err := strconv.ParseFloat(key, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: child key %q: %w", path, key, ErrMalformedTree)
			}
			child, err := fromDocument(rawChild, path+"."+key)
			if err != nil {
				return nil, err
			}
			if _, dup := children[offset]; dup {
				return nil, fmt.Errorf("%s: child key %q repeats offset %s: %w", path, key, FormatOffset(offset), ErrMalformedTree)
			}
			children[offset] = child
		}
		return &Internal{TestPoint: point, Children: children}, nil
	default:
		return nil, fmt.Errorf("%s: unexpected %T: %w", path, doc, ErrMalformedTree)
	}
}
