package memory

import "fmt"

// Stats summarizes the store for the UI sidebar and the stats command.
type Stats struct {
	TotalVerifiedClaims int            `json:"total_verified_claims"`
	AverageConfidence   float64        `json:"average_confidence"`
	TotalSessions       int            `json:"total_sessions"`
	VerdictDistribution map[string]int `json:"verdict_distribution"`
}

// Stats returns store-wide statistics. Counts are non-negative by
// construction; the average confidence of an empty store is zero.
func (s *Store) Stats() (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{VerdictDistribution: make(map[string]int)}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM verified_claims").Scan(&stats.TotalVerifiedClaims); err != nil {
		return nil, fmt.Errorf("failed to count claims: %w", err)
	}

	if stats.TotalVerifiedClaims > 0 {
		if err := s.db.QueryRow("SELECT AVG(confidence) FROM verified_claims").Scan(&stats.AverageConfidence); err != nil {
			return nil, fmt.Errorf("failed to average confidence: %w", err)
		}
	}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&stats.TotalSessions); err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	rows, err := s.db.Query("SELECT verdict, COUNT(*) FROM verified_claims GROUP BY verdict")
	if err != nil {
		return nil, fmt.Errorf("failed to query verdict distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var verdict string
		var count int
		if err := rows.Scan(&verdict, &count); err != nil {
			return nil, err
		}
		stats.VerdictDistribution[verdict] = count
	}
	return stats, rows.Err()
}
