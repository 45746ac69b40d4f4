package generator

import (
	"fmt"

	"github.com/codeGROOVE-dev/tzsniff/pkg/config"
	"github.com/codeGROOVE-dev/tzsniff/pkg/output"
	"github.com/codeGROOVE-dev/tzsniff/pkg/tree"
)

// Documents returns the files a run produces, named per cfg. The three core
// documents always come first, in tree, compact tree, equivalency order.
func (r *Result) Documents(cfg config.OutputConfig) ([]output.Document, error) {
	equivalencies, err := MarshalEquivalencies(r.Equivalencies)
	if err != nil {
		return nil, err
	}
	docs := []output.Document{
		{Name: cfg.Tree, Data: r.Pretty},
		{Name: cfg.CompactTree, Data: r.Compact},
		{Name: cfg.Equivalences, Data: equivalencies},
	}
	if cfg.Zstd {
		compressed, err := output.Compress(r.Compact)
		if err != nil {
			return nil, err
		}
		docs = append(docs, output.Document{Name: cfg.CompactTree + ".zst", Data: compressed})
	}
	if cfg.CBOR {
		data, err := tree.MarshalCBOR(r.Tree)
		if err != nil {
			return nil, fmt.Errorf("encoding CBOR tree: %w", err)
		}
		docs = append(docs, output.Document{Name: cfg.CBORTree, Data: data})
	}
	return docs, nil
}

// WriteOutputs writes the documents, or with check set only verifies that
// the files on disk already match them.
func WriteOutputs(w *output.Writer, docs []output.Document, check bool) error {
	if check {
		return w.Check(docs...)
	}
	return w.Write(docs...)
}
