package tsruntime

import (
	"math"
	"sort"
)

// quantileEstimator implements Jain & Chlamtac's P² algorithm: a streaming
// quantile estimate that costs O(1) per observation and never stores the
// observations themselves, which is what lets [Metrics] track GC-pause and
// promise-drain percentiles without retaining every sample. It tracks five
// markers — the running min, the running max, and three interior markers
// that chase their ideal rank as values stream in — and nudges each
// interior marker's height toward a parabolic (falling back to linear)
// estimate whenever its actual rank drifts more than one slot from where
// it should be.
type quantileEstimator struct {
	target float64 // the quantile this estimator tracks, in [0,1]

	markers  [5]marker
	warmup   []float64 // buffers the first 5 observations until markers can be seeded
	observed int
}

// marker is one of the five tracked positions: height is the estimated
// value at this marker, rank is its current integer position among
// observations seen so far, and idealRank/rankStep drive where rank should
// be heading as more observations arrive.
type marker struct {
	height    float64
	rank      int
	idealRank float64
	rankStep  float64
}

func newQuantileEstimator(target float64) *quantileEstimator {
	switch {
	case target < 0:
		target = 0
	case target > 1:
		target = 1
	}
	return &quantileEstimator{target: target}
}

// Observe folds one new sample into the estimate.
func (q *quantileEstimator) Observe(x float64) {
	q.observed++

	if len(q.warmup) < 5 {
		q.warmup = append(q.warmup, x)
		if len(q.warmup) == 5 {
			q.seedMarkers()
		}
		return
	}

	cell := q.locateCell(x)
	for i := cell + 1; i < 5; i++ {
		q.markers[i].rank++
	}
	for i := range q.markers {
		q.markers[i].idealRank += q.markers[i].rankStep
	}
	q.settleInteriorMarkers()
}

// seedMarkers sorts the five buffered warmup samples and plants the
// initial marker positions/heights from them.
func (q *quantileEstimator) seedMarkers() {
	sort.Float64s(q.warmup)
	p := q.target
	ideal := [5]float64{0, 2 * p, 4 * p, 2 + 2*p, 4}
	step := [5]float64{0, p / 2, p, (1 + p) / 2, 1}
	for i := 0; i < 5; i++ {
		q.markers[i] = marker{
			height:    q.warmup[i],
			rank:      i,
			idealRank: ideal[i],
			rankStep:  step[i],
		}
	}
}

// locateCell finds which of the four intervals x falls into, extending the
// outer markers if x is a new extreme, and returns the index of the
// interval's left-hand marker.
func (q *quantileEstimator) locateCell(x float64) int {
	if x < q.markers[0].height {
		q.markers[0].height = x
		return 0
	}
	if x >= q.markers[4].height {
		q.markers[4].height = x
		return 3
	}
	for i := 0; i < 4; i++ {
		if q.markers[i].height <= x && x < q.markers[i+1].height {
			return i
		}
	}
	return 3
}

// settleInteriorMarkers adjusts markers 1-3 toward their ideal rank,
// preferring a parabolic fit and falling back to a linear one whenever the
// parabolic estimate would overshoot a neighbor.
func (q *quantileEstimator) settleInteriorMarkers() {
	for i := 1; i < 4; i++ {
		drift := q.markers[i].idealRank - float64(q.markers[i].rank)
		grownRight := q.markers[i+1].rank-q.markers[i].rank > 1
		grownLeft := q.markers[i-1].rank-q.markers[i].rank < -1
		switch {
		case drift >= 1 && grownRight:
			q.nudge(i, 1)
		case drift <= -1 && grownLeft:
			q.nudge(i, -1)
		}
	}
}

func (q *quantileEstimator) nudge(i, direction int) {
	fitted := q.parabolicFit(i, direction)
	if q.markers[i-1].height < fitted && fitted < q.markers[i+1].height {
		q.markers[i].height = fitted
	} else {
		q.markers[i].height = q.linearFit(i, direction)
	}
	q.markers[i].rank += direction
}

func (q *quantileEstimator) parabolicFit(i, direction int) float64 {
	d := float64(direction)
	lo, mid, hi := &q.markers[i-1], &q.markers[i], &q.markers[i+1]
	loR, midR, hiR := float64(lo.rank), float64(mid.rank), float64(hi.rank)

	left := (midR - loR + d) * (hi.height - mid.height) / (hiR - midR)
	right := (hiR - midR - d) * (mid.height - lo.height) / (midR - loR)
	return mid.height + (d/(hiR-loR))*(left+right)
}

func (q *quantileEstimator) linearFit(i, direction int) float64 {
	mid := &q.markers[i]
	if direction > 0 {
		next := &q.markers[i+1]
		return mid.height + (next.height-mid.height)/float64(next.rank-mid.rank)
	}
	prev := &q.markers[i-1]
	return mid.height - (mid.height-prev.height)/float64(mid.rank-prev.rank)
}

// Value returns the current quantile estimate. Before five observations
// have arrived it falls back to sorting the warmup buffer directly.
func (q *quantileEstimator) Value() float64 {
	if q.observed == 0 {
		return 0
	}
	if q.observed < 5 {
		sorted := append([]float64(nil), q.warmup...)
		sort.Float64s(sorted)
		idx := int(float64(len(sorted)-1) * q.target)
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		return sorted[idx]
	}
	return q.markers[2].height
}

// Peak returns the largest observed value.
func (q *quantileEstimator) Peak() float64 {
	if q.observed == 0 {
		return 0
	}
	if q.observed < 5 {
		peak := q.warmup[0]
		for _, v := range q.warmup[1:] {
			if v > peak {
				peak = v
			}
		}
		return peak
	}
	return q.markers[4].height
}

// pSquareMultiQuantile tracks several target quantiles over one stream of
// observations by running one [quantileEstimator] per target alongside the
// running sum/count/max needed for a mean.
type pSquareMultiQuantile struct {
	estimators []*quantileEstimator
	targets    []float64
	total      float64
	n          int
	peak       float64
}

func newPSquareMultiQuantile(targets ...float64) *pSquareMultiQuantile {
	m := &pSquareMultiQuantile{
		targets: append([]float64(nil), targets...),
		peak:    -math.MaxFloat64,
	}
	for _, target := range targets {
		m.estimators = append(m.estimators, newQuantileEstimator(target))
	}
	return m
}

func (m *pSquareMultiQuantile) Update(x float64) {
	m.n++
	m.total += x
	if x > m.peak {
		m.peak = x
	}
	for _, est := range m.estimators {
		est.Observe(x)
	}
}

func (m *pSquareMultiQuantile) Quantile(i int) float64 {
	if i < 0 || i >= len(m.estimators) {
		return 0
	}
	return m.estimators[i].Value()
}

func (m *pSquareMultiQuantile) Count() int { return m.n }

func (m *pSquareMultiQuantile) Sum() float64 { return m.total }

func (m *pSquareMultiQuantile) Max() float64 {
	if m.n == 0 {
		return 0
	}
	return m.peak
}

func (m *pSquareMultiQuantile) Mean() float64 {
	if m.n == 0 {
		return 0
	}
	return m.total / float64(m.n)
}

func (m *pSquareMultiQuantile) Reset() {
	targets := m.targets
	*m = *newPSquareMultiQuantile(targets...)
}
