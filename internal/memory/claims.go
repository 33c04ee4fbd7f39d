package memory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNoMatch indicates no cached claim was similar enough to the query.
var ErrNoMatch = errors.New("no similar cached claim")

// CachedClaim is a previously verified claim kept for fast lookups.
type CachedClaim struct {
	ID            int64
	ClaimText     string
	Verdict       string
	Confidence    float64
	EvidenceCount int
	SessionID     string
	RetrievedAt   time.Time

	// Similarity to the query that matched it, set by FindSimilarClaim.
	Similarity float64
}

// CacheClaim stores a verified claim for future cache hits.
func (s *Store) CacheClaim(claimText, verdict string, confidence float64, evidenceCount int, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO verified_claims (claim_text, verdict, confidence, evidence_count, session_id)
		 VALUES (?, ?, ?, ?, ?)`,
		clip(claimText, 500), verdict, confidence, evidenceCount, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to cache claim: %w", err)
	}
	s.logger.Debug("claim cached",
		zap.String("verdict", verdict), zap.Float64("confidence", confidence))
	return nil
}

// FindSimilarClaim scans the most recently cached claims and returns the
// best match whose similarity ratio to query exceeds minRatio. Returns
// ErrNoMatch when nothing qualifies.
func (s *Store) FindSimilarClaim(query string, scanLimit int, minRatio float64) (*CachedClaim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if scanLimit <= 0 {
		scanLimit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, claim_text, verdict, confidence, evidence_count, session_id, retrieved_at
		 FROM verified_claims
		 ORDER BY retrieved_at DESC, id DESC
		 LIMIT ?`,
		scanLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached claims: %w", err)
	}
	defer rows.Close()

	var best *CachedClaim
	bestRatio := 0.0

	for rows.Next() {
		var c CachedClaim
		if err := rows.Scan(&c.ID, &c.ClaimText, &c.Verdict, &c.Confidence, &c.EvidenceCount, &c.SessionID, &c.RetrievedAt); err != nil {
			return nil, err
		}
		ratio := similarityRatio(query, c.ClaimText)
		if ratio > bestRatio {
			bestRatio = ratio
			c.Similarity = ratio
			claim := c
			best = &claim
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if best == nil || bestRatio <= minRatio {
		return nil, ErrNoMatch
	}
	return best, nil
}

// similarityRatio computes the Sorensen-Dice coefficient over character
// bigrams of the lowercased inputs. Ranges 0..1; 1 means identical
// bigram multisets.
func similarityRatio(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}

	ba := bigrams(a)
	bb := bigrams(b)
	if len(ba) == 0 || len(bb) == 0 {
		return 0
	}

	var overlap int
	for gram, count := range ba {
		if other, ok := bb[gram]; ok {
			if other < count {
				count = other
			}
			overlap += count
		}
	}

	var total int
	for _, count := range ba {
		total += count
	}
	for _, count := range bb {
		total += count
	}
	return 2 * float64(overlap) / float64(total)
}

func bigrams(s string) map[string]int {
	runes := []rune(s)
	grams := make(map[string]int, len(runes))
	for i := 0; i+1 < len(runes); i++ {
		grams[string(runes[i:i+2])]++
	}
	return grams
}
