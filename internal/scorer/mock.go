package scorer

import (
	"context"
	"encoding/binary"

	"golang.org/x/crypto/blake2b"

	"github.com/clair-gutierrez/sitetack/internal/encode"
)

// Mock stands in for a trained classifier when none is reachable, e.g. for
// dry runs and demos. Each window's score is derived from a keyed BLAKE2b
// hash of its indices, so it is stable across runs and processes.
type Mock struct {
	// Salt separates models; two mocks with different salts disagree.
	Salt string
}

func (m Mock) Score(ctx context.Context, batch encode.Batch) ([]float64, error) {
	out := make([]float64, batch.Len())
	for i, row := range batch.Indices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sum := rowDigest(m.Salt, row)
		// top 53 bits give a uniform float in [0,1)
		out[i] = float64(binary.BigEndian.Uint64(sum[:8])>>11) / (1 << 53)
	}
	return out, nil
}

// rowDigest hashes a window's indices under a namespace.
func rowDigest(namespace string, row []int) [blake2b.Size256]byte {
	buf := make([]byte, 0, len(namespace)+1+len(row))
	buf = append(buf, namespace...)
	buf = append(buf, 0)
	for _, idx := range row {
		buf = append(buf, byte(idx))
	}
	return blake2b.Sum256(buf)
}
