package audit

// StageStats aggregates the entries for one stage within a session.
type StageStats struct {
	Count           int     `json:"count"`
	AvgConfidence   float64 `json:"avg_confidence"`
	TotalDurationMS float64 `json:"total_duration_ms"`
}

// Stats summarizes one processing session.
type Stats struct {
	SessionID       string                `json:"session_id"`
	TotalOperations int                   `json:"total_operations"`
	SuccessCount    int                   `json:"success_count"`
	SuccessRate     float64               `json:"success_rate"`
	TotalDurationMS float64               `json:"total_duration_ms"`
	ByStage         map[Stage]*StageStats `json:"by_stage"`
}

// SessionStats aggregates all retained entries for a session ID. An unknown
// session yields zero stats, not an error.
func (l *Log) SessionStats(sessionID string) Stats {
	stats := Stats{
		SessionID: sessionID,
		ByStage:   make(map[Stage]*StageStats),
	}
	confSums := make(map[Stage]float64)
	confCounts := make(map[Stage]int)

	for _, e := range l.Entries() {
		if e.SessionID != sessionID {
			continue
		}
		stats.TotalOperations++
		if e.Success {
			stats.SuccessCount++
		}
		stats.TotalDurationMS += e.DurationMS

		s := stats.ByStage[e.Stage]
		if s == nil {
			s = &StageStats{}
			stats.ByStage[e.Stage] = s
		}
		s.Count++
		s.TotalDurationMS += e.DurationMS
		if e.Confidence != nil {
			confSums[e.Stage] += *e.Confidence
			confCounts[e.Stage]++
		}
	}

	for stage, s := range stats.ByStage {
		if n := confCounts[stage]; n > 0 {
			s.AvgConfidence = confSums[stage] / float64(n)
		}
	}
	if stats.TotalOperations > 0 {
		stats.SuccessRate = 100.0 * float64(stats.SuccessCount) / float64(stats.TotalOperations)
	}
	return stats
}
