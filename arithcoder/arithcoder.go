// Package arithcoder implements the range-based arithmetic encoder and
// decoder described in Amir Said's "Introduction to Arithmetic Coding -
// Theory and Practice" (HP Labs 2004-76), Algorithms 22-29. It is a
// bit-exact port of arithcode.c's encode_u8_u8/decode_u8_u8, generalized
// only to take the CDF as a runtime slice instead of a fixed C array.
//
// The coder is parameterized by an output alphabet of D=256 symbols (one
// byte per renormalization step), 32 bits of fixed-point precision, and a
// renormalization threshold of 2^24. Every message implicitly carries one
// extra end-of-message symbol so the decoder knows where to stop without
// a length prefix.
//
// # CDF framing
//
// Said's algorithm requires the decoder to have exactly the same CDF the
// encoder used. This package never serializes or transmits the CDF — both
// Encode and Decode take it as an explicit parameter, and it is the
// caller's responsibility to communicate it out-of-band (or, as the
// original host did, to recompute it identically from data both sides
// already possess). There is no implicit CDF derivation inside the coder.
package arithcoder

import (
	"errors"

	"github.com/akohlsmith/meshtastic-compression-test/bytestream"
)

// Fixed parameters exposed to callers, per spec.
const (
	// D is the output alphabet size: one byte emitted per renormalization step.
	D = 256
	// SymbolWidth is the bit width of each output symbol.
	SymbolWidth = 8
	// Precision is the number of fixed-point bits the coder's registers carry.
	Precision = 32
	// RenormThreshold is the interval-length floor that triggers renormalization.
	RenormThreshold = 1 << 24
	// MaxAlphabet is the largest total symbol count (user symbols + end
	// symbol) the fixed-capacity CDF table can hold.
	MaxAlphabet = 384
	// MinProbability is the smallest symbol probability the fixed-point
	// rescale can represent. Probabilities below this are silently
	// corrupted by truncation; callers must reject or clamp such CDFs.
	MinProbability = 1.0 / (1 << 24)

	mask = (uint64(1) << Precision) - 1
)

// Error kinds the coder distinguishes, returned synchronously; none
// propagate via panics. A failed Encode may have written partial output to
// outBuf — its length is undefined on error.
var (
	// ErrAlphabetTooLarge means nsym (user symbols + end symbol) would not
	// fit the fixed-capacity CDF table.
	ErrAlphabetTooLarge = errors.New("arithcoder: alphabet too large")
	// ErrOutputCapacity means the output buffer was not pre-sized large
	// enough for the encoded message plus its renormalization tail.
	ErrOutputCapacity = errors.New("arithcoder: output capacity exhausted")
	// ErrDegenerateInterval means the coding interval collapsed to zero
	// length: the CDF is corrupt, or assigns a symbol a probability below
	// MinProbability.
	ErrDegenerateInterval = errors.New("arithcoder: degenerate interval")
)

// coderState holds the base and length registers, the rescaled CDF, and
// the attached stream for a single encode or decode call (the decoder's
// code word v is a local of Decode, passed to the decode steps by pointer). It is built and discarded per call and
// must never be shared across goroutines or calls.
type coderState struct {
	b, l   uint64
	stream *bytestream.Stream
	cdf    []uint64 // rescaled lower boundaries, length nsym
	nsym   int      // user symbols + 1 implicit end symbol
}

// rescale converts a float64 CDF of length M+1 (cdf[0]=0, cdf[M]=1.0) into
// the coder's fixed-point table of nsym=M+1 entries (M user symbols plus
// the implicit end symbol), scaled into [0, 2^32-D) with the end symbol
// receiving the residual D units of room.
func rescale(cdfIn []float64) ([]uint64, int, error) {
	m := len(cdfIn) - 1
	nsym := m + 1
	if nsym >= MaxAlphabet {
		return nil, 0, ErrAlphabetTooLarge
	}

	s := float64(mask) - float64(D)

	scaled := make([]uint64, nsym)
	for i := 0; i < m; i++ {
		scaled[i] = uint64(s * cdfIn[i])
	}
	scaled[m] = uint64(s)
	return scaled, nsym, nil
}

// Encode encodes msg under cdf (the float64 CDF of length M+1 over msg's
// alphabet, e.g. from package cdf) and returns the encoded byte stream.
//
// outBuf, if non-nil, is the pre-allocated output buffer; it must be large
// enough to hold the encoded message plus up to four renormalization-tail
// bytes. If outBuf is nil, a 256-byte buffer is allocated internally.
func Encode(msg []byte, cdfFloat []float64, outBuf []byte) ([]byte, error) {
	scaled, nsym, err := rescale(cdfFloat)
	if err != nil {
		return nil, err
	}

	st := &coderState{cdf: scaled, nsym: nsym, stream: &bytestream.Stream{}}
	st.stream.Attach(outBuf)
	st.b = 0
	st.l = mask

	for _, sym := range msg {
		if err := st.encodeStep(uint64(sym)); err != nil {
			return nil, err
		}
	}

	if err := st.encodeStep(uint64(nsym - 1)); err != nil { // implicit end symbol
		return nil, err
	}
	if err := st.finalize(); err != nil {
		return nil, err
	}

	buf, used := st.stream.Detach()
	return buf[:used], nil
}

// encodeStep performs the update/carry-detect/renormalize sequence for one
// input symbol (estep_u8 in the original).
func (st *coderState) encodeStep(s uint64) error {
	if err := st.update(s); err != nil {
		return err
	}
	if st.l < RenormThreshold {
		return st.renorm()
	}
	return nil
}

// update narrows the coding interval to symbol s's sub-range and detects
// whether the base wrapped past 2^32 (update_u8 in the original).
func (st *coderState) update(s uint64) error {
	y := st.l
	if s != uint64(st.nsym-1) {
		y = (st.l * st.cdf[s+1]) >> Precision
	}

	a := st.b
	x := (st.l * st.cdf[s]) >> Precision
	st.b = (st.b + x) & mask
	st.l = y - x

	if st.l == 0 {
		return ErrDegenerateInterval
	}
	if a > st.b {
		st.stream.CarryU8()
	}
	return nil
}

// renorm emits the high byte of the base while the interval is too short
// to retain precision (erenorm_u8 in the original).
func (st *coderState) renorm() error {
	const shiftOut = Precision - SymbolWidth
	for st.l < RenormThreshold {
		if err := st.stream.PushU8(uint8(st.b >> shiftOut)); err != nil {
			return ErrOutputCapacity
		}
		st.l = (st.l << SymbolWidth) & mask
		st.b = (st.b << SymbolWidth) & mask
	}
	return nil
}

// finalize selects a code word inside the final interval that survives
// truncation of trailing zero bytes, then flushes the remaining
// renormalization tail (eselect_u8 in the original).
func (st *coderState) finalize() error {
	a := st.b
	st.b = (st.b + (1 << (Precision - SymbolWidth - 1))) & mask
	st.l = (uint64(1) << (Precision - 2*SymbolWidth)) - 1

	if a > st.b {
		st.stream.CarryU8()
	}
	return st.renorm()
}

// Decode decodes an arithmetic-coded byte stream produced by Encode under
// the same cdf, returning the original message. Decoding halts on the
// implicit end-of-message symbol; trailing zero bytes appended to buf do
// not change the result (pop-past-end reads as zero).
func Decode(buf []byte, cdfFloat []float64) ([]byte, error) {
	scaled, nsym, err := rescale(cdfFloat)
	if err != nil {
		return nil, err
	}

	st := &coderState{cdf: scaled, nsym: nsym, stream: &bytestream.Stream{}}
	st.stream.Attach(buf)
	st.b = 0
	st.l = mask

	v := st.prime()
	out := make([]byte, 0, len(buf))

	sym, isEnd := st.step(&v)
	for !isEnd {
		out = append(out, byte(sym))
		sym, isEnd = st.step(&v)
	}
	return out, nil
}

// prime assembles the initial 32-bit code word from the first four bytes
// of the stream, big-endian (dprime_u8 in the original).
func (st *coderState) prime() uint64 {
	var v uint64
	for k := 1; k <= Precision/SymbolWidth; k++ {
		v += (uint64(1) << (Precision - SymbolWidth*k)) * uint64(st.stream.PopU8())
	}
	return v
}

// step selects the next symbol by bisection over the CDF, then
// renormalizes regardless of whether the end symbol was selected
// (dstep_u8 in the original).
func (st *coderState) step(v *uint64) (uint64, bool) {
	s, isEnd := st.selectSymbol(v)
	if st.l < RenormThreshold {
		st.drenorm(v)
	}
	return s, isEnd
}

// selectSymbol bisects [0, nsym) against the current code value v to find
// the decoded symbol (dselect in the original). Ties at an exact boundary
// resolve to the lower symbol, matching the encoder's interval assignment.
func (st *coderState) selectSymbol(v *uint64) (uint64, bool) {
	var s, x uint64
	n := uint64(st.nsym)
	y := st.l

	for (n - s) > 1 {
		m := (s + n) / 2
		z := (st.l * st.cdf[m]) >> Precision
		if z > *v {
			n = m
			y = z
		} else {
			s = m
			x = z
		}
	}

	*v -= x
	st.l = y - x
	return s, s == uint64(st.nsym-1)
}

// drenorm consumes more input bytes into v while the interval is too short
// to retain precision (drenorm_u8 in the original).
func (st *coderState) drenorm(v *uint64) {
	for st.l < RenormThreshold {
		*v = ((*v << SymbolWidth) & mask) + uint64(st.stream.PopU8())
		st.l = (st.l << SymbolWidth) & mask
	}
}
