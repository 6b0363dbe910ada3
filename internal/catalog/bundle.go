package catalog

import (
	"encoding/json"
	"fmt"
	"io"
)

type bundle struct {
	Movies     []Entry     `json:"movies"`
	Similarity [][]float64 `json:"similarity"`
}

// ReadBundle decodes the JSON interchange format:
//
//	{"movies":[{"movie_id":19995,"title":"Avatar"}],"similarity":[[1.0]]}
func ReadBundle(r io.Reader) (*Catalog, error) {
	var b bundle
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: decode bundle: %v", ErrInvalidArtifact, err)
	}
	return New(b.Movies, b.Similarity)
}

// WriteBundle encodes c in the format ReadBundle accepts.
func WriteBundle(w io.Writer, c *Catalog) error {
	encoder := json.NewEncoder(w)
	return encoder.Encode(bundle{Movies: c.entries, Similarity: c.rows})
}
