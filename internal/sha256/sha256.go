// Package sha256 provides content-addressed identifiers for bundle assets.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/alecthomas/errors"
)

type SHA256 [sha256.Size]byte

// SumReader hashes everything read from r.
func SumReader(r io.Reader) (SHA256, error) {
	h := sha256.New()
	_, err := io.Copy(h, r)
	var out SHA256
	copy(out[:], h.Sum(nil))
	return out, errors.WithStack(err)
}

func (s SHA256) String() string { return hex.EncodeToString(s[:]) }
