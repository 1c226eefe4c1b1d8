package treasure

import (
	"encoding/binary"
	"math/rand"

	"github.com/mroth/weightedrand/v2"
	"lukechampine.com/blake3"
)

// RandomSource derives the random stream used by the sponsor activation
// lottery. Implementations must be deterministic for a given seed.
type RandomSource interface {
	Rand(seed []byte) *rand.Rand
}

// HashSource seeds math/rand with the blake3 digest of the seed material.
type HashSource struct{}

// Rand implements RandomSource.
func (HashSource) Rand(seed []byte) *rand.Rand {
	sum := blake3.Sum256(seed)
	return rand.New(rand.NewSource(int64(binary.BigEndian.Uint64(sum[:8]))))
}

// drawActivation runs a 1:odds draw. Odds of zero or one always activate.
func drawActivation(src RandomSource, odds uint32, seed []byte) (bool, error) {
	if odds <= 1 {
		return true, nil
	}
	chooser, err := weightedrand.NewChooser(
		weightedrand.NewChoice(true, uint64(1)),
		weightedrand.NewChoice(false, uint64(odds-1)),
	)
	if err != nil {
		return false, err
	}
	if src == nil {
		src = HashSource{}
	}
	return chooser.PickSource(src.Rand(seed)), nil
}

func lotterySeed(txHash []byte, treasureKey uint64, finder [20]byte, now int64) []byte {
	buf := make([]byte, 0, len(txHash)+8+20+8)
	buf = append(buf, txHash...)
	buf = binary.BigEndian.AppendUint64(buf, treasureKey)
	buf = append(buf, finder[:]...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(now))
	return buf
}
