// Package pocsag decodes POCSAG paging frames: sync-word acquisition,
// BCH(31,21)-protected codeword batches, and address/message codeword
// reassembly into numeric and alphanumeric pages.
package pocsag

// genPoly is the POCSAG BCH(31,21) generator polynomial,
// x^10+x^9+x^8+x^6+x^5+x^3+1, used both by this package and by the FLEX
// decoder (grounded on bch_code.h's shared codec, FLEX's own BCH(31,21)
// words use the identical generator).
const genPoly = 0x769

// divRemainder returns the remainder of dividing the low 31 bits of v by
// genPoly under GF(2) polynomial arithmetic: the standard CRC-style
// systematic encoding/syndrome step shared by Encode and syndrome.
func divRemainder(v uint32) uint32 {
	reg := v & 0x7fffffff
	for i := 30; i >= 10; i-- {
		if reg&(1<<uint(i)) != 0 {
			reg ^= genPoly << uint(i-10)
		}
	}
	return reg & 0x3ff
}

// Encode computes the systematic BCH(31,21) codeword for a 21-bit data
// field: the data occupies the 21 high bits, the 10 parity bits the low
// bits, chosen so the whole 31-bit word is divisible by genPoly.
func Encode(data21 uint32) uint32 {
	data21 &= 0x1fffff
	return (data21 << 10) | divRemainder(data21<<10)
}

// syndromeTable maps every syndrome producible by a weight-0, 1 or 2 bit
// error onto the error pattern that caused it, built once from genPoly
// rather than a transcribed table: the Berlekamp-Massey step BCH(31,21,2)
// would otherwise need, specialized to "at most two bits wrong" by brute
// force over the (31 choose 2)+31+1 correctable patterns.
var syndromeTable = buildSyndromeTable()

func buildSyndromeTable() map[uint32]uint32 {
	table := make(map[uint32]uint32, 1+31+31*30/2)
	table[0] = 0
	for i := 0; i < 31; i++ {
		e := uint32(1) << uint(i)
		table[divRemainder(e)] = e
	}
	for i := 0; i < 31; i++ {
		for j := i + 1; j < 31; j++ {
			e := (uint32(1) << uint(i)) | (uint32(1) << uint(j))
			s := divRemainder(e)
			if _, exists := table[s]; !exists {
				table[s] = e
			}
		}
	}
	return table
}

// Decode corrects up to two bit errors in a 31-bit BCH(31,21) codeword and
// returns its 21-bit data field. ok is false when the syndrome does not
// correspond to any correctable (weight <= 2) error pattern, meaning the
// codeword is uncorrectably corrupt.
func Decode(codeword uint32) (data uint32, corrected bool, ok bool) {
	codeword &= 0x7fffffff
	s := divRemainder(codeword)
	if s == 0 {
		return codeword >> 10, false, true
	}
	e, found := syndromeTable[s]
	if !found {
		return 0, false, false
	}
	fixed := codeword ^ e
	return fixed >> 10, true, true
}
