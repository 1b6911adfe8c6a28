package uniws

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"

	"github.com/tomruk/yeast"
	"github.com/uniws/uniws/internal/sync"
)

const socketIDSize = 15

var (
	socketIDMu  sync.Mutex
	socketIDSeq uint32 // Sequence number to prevent id overlaps.
)

// generateSocketID produces the opaque per-upgrade id: random bytes with a
// trailing sequence number, base64-encoded.
func generateSocketID() (string, error) {
	socketIDMu.Lock()
	seq := socketIDSeq
	socketIDSeq++
	socketIDMu.Unlock()

	b := make([]byte, socketIDSize)
	seqOffset := socketIDSize - 4
	binary.BigEndian.PutUint32(b[seqOffset:], seq)

	_, err := rand.Read(b[:seqOffset])
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// tokenSource generates the per-connection tokens attached to outgoing
// upgrade calls so token matching can succeed deterministically.
type tokenSource struct {
	yeaster *yeast.Yeaster
}

func newTokenSource() *tokenSource {
	return &tokenSource{yeaster: yeast.New()}
}

func (t *tokenSource) next() string {
	return t.yeaster.Yeast()
}
