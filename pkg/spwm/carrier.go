package spwm

import "math"

// One time unit is 10 ns (100 MHz reference clock). The constants keep
// the reduced precision of the driver firmware they were lifted from so
// regenerated tables stay bit-identical to the shipped reference vector:
// timeStep and twoPi are single-precision values widened to float64.
const (
	amplitudeScale int32 = 1000000

	timeStep = float64(float32(1.0e-8))
	twoPi    = float64(float32(2 * 3.141592654))
)

// carrierModel holds the integer timing grid of one synthesis run: the
// triangular carrier geometry and the sampled sine reference. Amplitudes
// are dimensionless counts in [-amplitudeScale, amplitudeScale]; times
// are 10 ns counts.
type carrierModel struct {
	quarter      uint32 // carrier quarter-cycle, time units
	half         uint32
	threeQuarter uint32
	full         uint32
	slope        int32 // carrier amplitude change per time unit

	signalDuration uint32 // one full output cycle
	signalQuarter  uint32

	omega    float64 // reference angular rate, rad per time unit
	maScaled float64 // reference peak amplitude in counts
}

func newCarrierModel(signalFreq, mf uint32, ma float64) carrierModel {
	var m carrierModel
	m.quarter = uint32(1.0 / (timeStep * float64(signalFreq*mf*4)))
	m.half = 2 * m.quarter
	m.threeQuarter = 3 * m.quarter
	m.full = 4 * m.quarter
	m.slope = amplitudeScale / int32(m.quarter)

	m.signalDuration = m.full * mf
	m.signalQuarter = m.signalDuration / 4

	m.omega = twoPi / float64(m.signalDuration)
	m.maScaled = float64(uint32(ma * float64(amplitudeScale)))
	return m
}

// reference samples the channel-1 sine reference at absolute time t,
// truncated toward zero to a count.
func (m *carrierModel) reference(t uint32) int32 {
	return int32(m.maScaled * math.Sin(m.omega*float64(t)))
}

// referenceInv samples the channel-2 reference, the 180° shifted sine
// expressed as a negation.
func (m *carrierModel) referenceInv(t uint32) int32 {
	return int32(-(m.maScaled * math.Sin(m.omega*float64(t))))
}

// fallingRamp is the carrier amplitude on its descending half,
// tri in [0, half].
func (m *carrierModel) fallingRamp(tri uint32) int32 {
	return amplitudeScale - m.slope*int32(tri)
}

// risingRamp is the carrier amplitude on its ascending half,
// tri in [half, full].
func (m *carrierModel) risingRamp(tri uint32) int32 {
	return -amplitudeScale + m.slope*int32(tri-m.half)
}
