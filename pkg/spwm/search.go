package spwm

// synthesizer walks one quarter of the output cycle, carrier quadrant by
// carrier quadrant, and hands every reference/carrier crossing it finds
// to the symmetry writer. Each quadrant scan seeds itself with a coarse
// analytic estimate of the crossing time, then advances one time unit at
// a time until the crossing condition holds. The estimate solves the
// carrier ramp against the reference amplitude at the quadrant end;
// because the sine moves monotonically toward the ramp within a quadrant
// and integer division truncates, the seed can only undershoot, so the
// fine scan never skips the crossing.
type synthesizer struct {
	model carrierModel
	w     *tableWriter

	h1, h2 channelState

	steps     uint64
	crossings uint64
}

// channelState tracks one channel's progress through the search.
type channelState struct {
	syncCaptured bool
	sync         uint32
	lastCrossing uint32
}

func synthesize(p Params, h1, h2 []uint32) Result {
	s := &synthesizer{
		model: newCarrierModel(p.SignalFreq, p.MF, p.MA),
		w:     newTableWriter(h1, h2, p.MF),
	}
	for n := uint32(0); n < p.MF/4; n++ {
		s.scanQuadrant1(n)
		s.scanQuadrant2(n)
		s.scanQuadrant3(n)
		s.scanQuadrant4(n)
	}
	s.closeQuarter()
	return Result{
		H1Sync:         s.h1.sync,
		H2Sync:         s.h2.sync,
		SignalDuration: s.model.signalDuration,
		FineScanSteps:  s.steps,
		Crossings:      s.crossings,
	}
}

// crossChannel1 handles a channel-1 crossing at absolute time t. The
// first crossing of the run becomes the sync offset; every later one
// yields the duration since the previous crossing.
func (s *synthesizer) crossChannel1(t uint32) {
	s.crossings++
	if !s.h1.syncCaptured {
		s.h1.syncCaptured = true
		s.h1.sync = t
	} else {
		s.w.writeChannel1(t - s.h1.lastCrossing)
	}
	s.h1.lastCrossing = t
}

// crossChannel2 is crossChannel1 for the other channel, with one extra
// duty: channel 2's sync is the last of the two to be captured, so its
// arrival also fixes the half-cycle boundary slots of both tables.
func (s *synthesizer) crossChannel2(t uint32) {
	s.crossings++
	if !s.h2.syncCaptured {
		s.h2.syncCaptured = true
		s.h2.sync = t
		s.w.writeHalfBoundary(s.h1.sync + s.h2.sync)
	} else {
		s.w.writeChannel2(t - s.h2.lastCrossing)
	}
	s.h2.lastCrossing = t
}

// scanQuadrant1 searches the carrier's first quadrant of sub-cycle n,
// where the falling carrier meets the rising channel-1 reference.
func (s *synthesizer) scanQuadrant1(n uint32) {
	m := &s.model
	base := n * m.full

	amp := m.reference(base + m.quarter)
	tri := uint32((amplitudeScale - amp) / m.slope)
	t := base + tri

	for tri < m.quarter {
		if m.reference(t) >= m.fallingRamp(tri) {
			s.crossChannel1(t)
			t += m.quarter - tri
			tri = m.quarter
		} else {
			s.steps++
			t++
			tri++
		}
	}
}

// scanQuadrant2 continues down the same carrier ramp past zero, where it
// meets the falling channel-2 reference.
func (s *synthesizer) scanQuadrant2(n uint32) {
	m := &s.model
	base := n * m.full

	amp := m.referenceInv(base + m.quarter)
	tri := uint32((amplitudeScale - amp) / m.slope)
	t := base + tri

	for tri < m.half {
		if m.referenceInv(t) >= m.fallingRamp(tri) {
			s.crossChannel2(t)
			t += m.half - tri
			tri = m.half
		} else {
			s.steps++
			t++
			tri++
		}
	}
}

// scanQuadrant3 searches the rising carrier against the channel-2
// reference, closing the pulse opened in quadrant 2.
func (s *synthesizer) scanQuadrant3(n uint32) {
	m := &s.model
	base := n * m.full

	amp := m.referenceInv(base + m.threeQuarter)
	tri := uint32((amplitudeScale+amp)/m.slope) + m.half
	t := base + tri

	for tri < m.threeQuarter {
		if m.risingRamp(tri) >= m.referenceInv(t) {
			s.crossChannel2(t)
			t += m.threeQuarter - tri
			tri = m.threeQuarter
		} else {
			s.steps++
			t++
			tri++
		}
	}
}

// scanQuadrant4 searches the rising carrier against the channel-1
// reference, closing the pulse opened in quadrant 1.
func (s *synthesizer) scanQuadrant4(n uint32) {
	m := &s.model
	base := n * m.full

	amp := m.reference(base + m.threeQuarter)
	tri := uint32((amplitudeScale+amp)/m.slope) + m.half
	t := base + tri

	for tri < m.full {
		if m.risingRamp(tri) >= m.reference(t) {
			s.crossChannel1(t)
			t += m.full - tri
			tri = m.full
		} else {
			s.steps++
			t++
			tri++
		}
	}
}

// closeQuarter fills the one slot per channel the mirrored scan leaves
// open, where the front and back cursors meet at the quarter-cycle peak.
// The duration is twice the gap between the last crossing and the
// quarter boundary, by reflection across the peak.
func (s *synthesizer) closeQuarter() {
	q := s.model.signalQuarter
	s.w.closeChannel1(2 * (q - s.h1.lastCrossing))
	s.w.closeChannel2(2 * (q - s.h2.lastCrossing))
}
