package spwm

// tableWriter stores each measured duration at every slot the waveform
// symmetry determines from it. A channel's table holds its positive
// half-cycle in [0, mf) and its negative half-cycle in [mf, 2mf); within
// a half-cycle the entries mirror around the center. The two channels
// run 180° apart, so a duration measured on one channel also belongs in
// the other channel's opposite half. One measurement therefore lands in
// four slots: own-table front, own-table mirror, other-table shifted
// front, other-table shifted mirror.
type tableWriter struct {
	h1, h2 []uint32
	mf     uint32

	h1Front, h1Back           uint32
	h1ShiftFront, h1ShiftBack uint32
	h2Front, h2Back           uint32
	h2ShiftFront, h2ShiftBack uint32
}

func newTableWriter(h1, h2 []uint32, mf uint32) *tableWriter {
	return &tableWriter{
		h1: h1, h2: h2, mf: mf,
		h1Front: 0, h1Back: mf - 2,
		h1ShiftFront: mf, h1ShiftBack: 2*mf - 2,
		h2Front: 0, h2Back: mf - 2,
		h2ShiftFront: mf, h2ShiftBack: 2*mf - 2,
	}
}

// writeChannel1 records a channel-1 duration at its four symmetric slots.
func (w *tableWriter) writeChannel1(d uint32) {
	w.h1[w.h1Front] = d
	w.h1Front++
	w.h1[w.h1Back] = d
	w.h1Back--
	w.h2[w.h2ShiftFront] = d
	w.h2ShiftFront++
	w.h2[w.h2ShiftBack] = d
	w.h2ShiftBack--
}

// writeChannel2 records a channel-2 duration at its four symmetric slots.
func (w *tableWriter) writeChannel2(d uint32) {
	w.h2[w.h2Front] = d
	w.h2Front++
	w.h2[w.h2Back] = d
	w.h2Back--
	w.h1[w.h1ShiftFront] = d
	w.h1ShiftFront++
	w.h1[w.h1ShiftBack] = d
	w.h1ShiftBack--
}

// writeHalfBoundary fills the last slot of each half-cycle in both
// tables. Those slots span a zero crossing of the output, where the
// leading dead interval of one channel meets the trailing interval of
// the other; their width is the sum of the two sync offsets.
func (w *tableWriter) writeHalfBoundary(sum uint32) {
	mid, end := w.mf-1, 2*w.mf-1
	w.h1[mid] = sum
	w.h1[end] = sum
	w.h2[mid] = sum
	w.h2[end] = sum
}

// closeChannel1 resolves the slot where the front and back cursors meet,
// at the center of the half-cycle. The mirrored scan never measures it
// directly; its width follows from reflecting the last crossing across
// the quarter-cycle boundary.
func (w *tableWriter) closeChannel1(d uint32) {
	w.h1[w.h1Front] = d
	w.h2[w.h2ShiftFront] = d
}

// closeChannel2 is closeChannel1 for the other channel.
func (w *tableWriter) closeChannel2(d uint32) {
	w.h2[w.h2Front] = d
	w.h1[w.h1ShiftFront] = d
}
