package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"factagent/internal/embedding"
)

// Document is a knowledge-base entry used as verification evidence.
type Document struct {
	ID        int64
	Content   string
	Source    string
	CreatedAt time.Time

	// Similarity to the search query, set by SearchKnowledge.
	Similarity float64
}

// StoreDocument embeds content and stores it in the knowledge base.
// Without an embedding engine the document is stored for keyword search
// only.
func (s *Store) StoreDocument(ctx context.Context, content, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var embeddingJSON interface{}
	if s.embeddingEngine != nil {
		vec, err := s.embeddingEngine.Embed(ctx, content)
		if err != nil {
			return fmt.Errorf("failed to embed document: %w", err)
		}
		data, err := json.Marshal(vec)
		if err != nil {
			return fmt.Errorf("failed to serialize embedding: %w", err)
		}
		embeddingJSON = string(data)
	}

	_, err := s.db.Exec(
		"INSERT INTO knowledge_docs (content, source, embedding) VALUES (?, ?, ?)",
		content, source, embeddingJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}
	s.logger.Debug("document stored", zap.String("source", source), zap.Int("len", len(content)))
	return nil
}

// SearchKnowledge returns the topK documents most similar to the query,
// ranked by cosine similarity of embeddings. Without an embedding engine
// it falls back to keyword matching.
func (s *Store) SearchKnowledge(ctx context.Context, query string, topK int) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 {
		topK = 3
	}

	if s.embeddingEngine == nil {
		return s.searchKeyword(query, topK)
	}

	queryVec, err := s.embeddingEngine.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	if s.vectorExt {
		return s.searchVec(queryVec, topK)
	}

	rows, err := s.db.Query(
		"SELECT id, content, source, embedding, created_at FROM knowledge_docs WHERE embedding IS NOT NULL",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge base: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var embeddingJSON string
		if err := rows.Scan(&doc.ID, &doc.Content, &doc.Source, &embeddingJSON, &doc.CreatedAt); err != nil {
			return nil, err
		}
		var vec []float32
		if err := json.Unmarshal([]byte(embeddingJSON), &vec); err != nil {
			s.logger.Debug("skipping document with bad embedding", zap.Int64("id", doc.ID))
			continue
		}
		doc.Similarity = embedding.CosineSimilarity(queryVec, vec)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Similarity > docs[j].Similarity })
	if len(docs) > topK {
		docs = docs[:topK]
	}
	return docs, nil
}

// searchVec ranks in SQL using the sqlite-vec cosine distance function,
// avoiding the full-table scan in Go.
func (s *Store) searchVec(queryVec []float32, topK int) ([]Document, error) {
	queryJSON, err := json.Marshal(queryVec)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize query embedding: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT id, content, source, created_at,
		        vec_distance_cosine(embedding, ?) AS dist
		 FROM knowledge_docs
		 WHERE embedding IS NOT NULL
		 ORDER BY dist ASC
		 LIMIT ?`,
		string(queryJSON), topK,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge base: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var dist float64
		if err := rows.Scan(&doc.ID, &doc.Content, &doc.Source, &doc.CreatedAt, &dist); err != nil {
			return nil, err
		}
		doc.Similarity = 1 - dist
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// searchKeyword is the no-engine fallback: ranks documents by how many
// query words they contain.
func (s *Store) searchKeyword(query string, topK int) ([]Document, error) {
	rows, err := s.db.Query("SELECT id, content, source, created_at FROM knowledge_docs")
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge base: %w", err)
	}
	defer rows.Close()

	words := strings.Fields(strings.ToLower(query))

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Content, &doc.Source, &doc.CreatedAt); err != nil {
			return nil, err
		}
		lower := strings.ToLower(doc.Content)
		var hits int
		for _, w := range words {
			if strings.Contains(lower, w) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		doc.Similarity = float64(hits) / float64(len(words))
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Similarity > docs[j].Similarity })
	if len(docs) > topK {
		docs = docs[:topK]
	}
	return docs, nil
}

// DocumentCount returns the number of knowledge-base documents.
func (s *Store) DocumentCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM knowledge_docs").Scan(&count)
	return count, err
}
