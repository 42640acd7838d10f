package pacchetto

import (
	"encoding/binary"
	"math/rand/v2"
	"time"
)

// Jitter spreads base by up to ±factor, deterministically for a given seed.
// A factor outside (0, 1) returns base unchanged.
func Jitter(seed uint64, base time.Duration, factor float64) time.Duration {
	if factor <= 0 || factor >= 1 || base <= 0 {
		return base
	}

	var seedBytes [32]byte
	binary.LittleEndian.PutUint64(seedBytes[0:8], seed)
	rand := rand.New(rand.NewChaCha8(seedBytes))

	// [-factor, +factor)
	offset := (rand.Float64()*2 - 1) * factor
	return time.Duration(float64(base) * (1 + offset))
}
