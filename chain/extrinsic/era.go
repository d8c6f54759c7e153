package extrinsic

import (
	"math/bits"

	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/lib/scale"
)

// Era is the mortality of a signed extrinsic.
type Era struct {
	Immortal bool
	Period   uint64
	Phase    uint64
}

var ImmortalEra = Era{Immortal: true}

// MortalEra returns an era valid for period blocks starting at current. The
// period is rounded up to a power of two in [4, 65536].
func MortalEra(current, period uint64) Era {
	period = nextPow2(period)
	if period < 4 {
		period = 4
	}
	if period > 1<<16 {
		period = 1 << 16
	}
	phase := current % period
	qf := quantizeFactor(period)
	return Era{Period: period, Phase: phase / qf * qf}
}

func nextPow2(v uint64) uint64 {
	if v <= 1 {
		return 1
	}
	if v > 1<<63 {
		return 1 << 63
	}
	return 1 << (64 - bits.LeadingZeros64(v-1))
}

func quantizeFactor(period uint64) uint64 {
	qf := period >> 12
	if qf < 1 {
		return 1
	}
	return qf
}

// Birth is the first block the era is valid in, given the current block.
func (e Era) Birth(current uint64) uint64 {
	if e.Immortal {
		return 0
	}
	base := current
	if base < e.Phase {
		base = e.Phase
	}
	return (base-e.Phase)/e.Period*e.Period + e.Phase
}

func (e Era) Encode(enc *scale.Encoder) {
	if e.Immortal {
		enc.PutU8(0)
		return
	}
	low := bits.TrailingZeros64(e.Period) - 1
	if low < 1 {
		low = 1
	}
	if low > 15 {
		low = 15
	}
	enc.PutU16(uint16(low) | uint16(e.Phase/quantizeFactor(e.Period))<<4)
}

func decodeEra(d *scale.Decoder) (Era, error) {
	first, err := d.U8()
	if err != nil {
		return Era{}, err
	}
	if first == 0 {
		return ImmortalEra, nil
	}
	second, err := d.U8()
	if err != nil {
		return Era{}, err
	}
	enc := uint64(first) | uint64(second)<<8
	period := uint64(2) << (enc % (1 << 4))
	qf := quantizeFactor(period)
	phase := (enc >> 4) * qf
	if period < 4 || phase >= period {
		return Era{}, xerrors.Errorf("invalid mortal era 0x%04x", enc)
	}
	return Era{Period: period, Phase: phase}, nil
}
