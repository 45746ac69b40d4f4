package tree

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/codeGROOVE-dev/tzsniff/pkg/testpoint"
)

// cborMode uses Core Deterministic Encoding (RFC 8949 §4.2): map keys are
// sorted and numbers take their shortest form, so equal trees always encode
// to identical bytes.
var cborMode cbor.EncMode

func init() {
	var err error
	cborMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("tree: CBOR encoder initialization failed: " + err.Error())
	}
}

// cborInternal is the wire form of an internal node. Leaves are bare text
// strings, as in the JSON rendering.
type cborInternal struct {
	TestPoint string                      `cbor:"testPoint"`
	Children  map[float64]cbor.RawMessage `cbor:"children"`
}

// MarshalCBOR renders n as deterministic CBOR.
func MarshalCBOR(n Node) ([]byte, error) {
	switch cur := n.(type) {
	case *Leaf:
		return cborMode.Marshal(cur.Zone)
	case *Internal:
		wire := cborInternal{
			TestPoint: cur.TestPoint.String(),
			Children:  make(map[float64]cbor.RawMessage, len(cur.Children)),
		}
		for v, child := range cur.Children {
			b, err := MarshalCBOR(child)
			if err != nil {
				return nil, err
			}
			wire.Children[v] = b
		}
		return cborMode.Marshal(wire)
	default:
		return nil, fmt.Errorf("unexpected node type %T", n)
	}
}

// UnmarshalCBOR parses the output of MarshalCBOR.
func UnmarshalCBOR(data []byte) (Node, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty CBOR document: %w", ErrMalformedTree)
	}
	// Major type 3 is a text string.
	if data[0]>>5 == 3 {
		var zone string
		if err := cbor.Unmarshal(data, &zone); err != nil {
			return nil, fmt.Errorf("decoding leaf: %w", err)
		}
		return &Leaf{Zone: zone}, nil
	}

	var wire cborInternal
	if err := cbor.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decoding internal node: %w", err)
	}
	point, err := testpoint.Parse(wire.TestPoint)
	if err != nil {
		return nil, err
	}
	if len(wire.Children) == 0 {
		return nil, fmt.Errorf("internal node at %s has no children: %w", point, ErrMalformedTree)
	}
	children := make(map[float64]Node, len(wire.Children))
	for v, raw := range wire.Children {
		child, err := UnmarshalCBOR(raw)
		if err != nil {
			return nil, err
		}
		children[v] = child
	}
	return &Internal{TestPoint: point, Children: children}, nil
}
