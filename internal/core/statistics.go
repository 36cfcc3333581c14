package core

// SequenceStats summarizes one stored sequence.
type SequenceStats struct {
	PointCount    int           `json:"pointCount"`
	TimeRange     TimeRange     `json:"timeRange"`
	SpatialExtent SpatialExtent `json:"spatialExtent"`
	Quantiles     []int         `json:"quantiles,omitempty"`
}

// EnsembleStats summarizes the Monte-Carlo list. Ranges are the union of
// the finite values over every simulation.
type EnsembleStats struct {
	Simulations   int           `json:"simulations"`
	TotalPoints   int           `json:"totalPoints"`
	TimeRange     TimeRange     `json:"timeRange"`
	SpatialExtent SpatialExtent `json:"spatialExtent"`
}

// Statistics is the aggregate summary of adapter state.
type Statistics struct {
	HasDeterministic bool           `json:"hasDeterministic"`
	HasQuantiles     bool           `json:"hasQuantiles"`
	MonteCarloCount  int            `json:"monteCarloCount"`
	Deterministic    *SequenceStats `json:"deterministic,omitempty"`
	Quantiles        *SequenceStats `json:"quantiles,omitempty"`
	MonteCarlo       *EnsembleStats `json:"monteCarlo,omitempty"`
}

func sequenceStats(tr *Trajectory) *SequenceStats {
	if tr == nil {
		return nil
	}
	return &SequenceStats{
		PointCount:    tr.Metadata.PointCount,
		TimeRange:     tr.Metadata.TimeRange,
		SpatialExtent: tr.Metadata.SpatialExtent,
		Quantiles:     cloneInts(tr.Metadata.Quantiles),
	}
}

func (s *SequenceStats) clone() *SequenceStats {
	if s == nil {
		return nil
	}
	c := *s
	c.Quantiles = cloneInts(s.Quantiles)
	return &c
}

func (e *EnsembleStats) clone() *EnsembleStats {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

// clone returns a copy that shares no memory with s.
func (s *Statistics) clone() Statistics {
	c := *s
	c.Deterministic = s.Deterministic.clone()
	c.Quantiles = s.Quantiles.clone()
	c.MonteCarlo = s.MonteCarlo.clone()
	return c
}

func cloneInts(v []int) []int {
	if v == nil {
		return nil
	}
	return append([]int(nil), v...)
}

func ensembleStats(runs []*Trajectory) *EnsembleStats {
	if len(runs) == 0 {
		return nil
	}
	es := &EnsembleStats{Simulations: len(runs)}
	for _, run := range runs {
		es.TotalPoints += run.Metadata.PointCount
	}
	es.TimeRange, es.SpatialExtent = ensembleExtent(runs)
	return es
}

func calculateStatistics(det, quant *Trajectory, runs []*Trajectory) *Statistics {
	return &Statistics{
		HasDeterministic: det != nil,
		HasQuantiles:     quant != nil,
		MonteCarloCount:  len(runs),
		Deterministic:    sequenceStats(det),
		Quantiles:        sequenceStats(quant),
		MonteCarlo:       ensembleStats(runs),
	}
}
