// Package memory implements the SQLite-backed memory manager: sessions,
// interaction history, the verified-claims cache, and the knowledge base
// used for evidence retrieval.
package memory

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"factagent/internal/embedding"
)

// Store is the SQLite-backed memory manager.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
	logger *zap.Logger

	embeddingEngine embedding.Engine
	vectorExt       bool // sqlite-vec available
}

// NewStore initializes the SQLite database at the given path.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("memory")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logger.Debug("failed to set sqlite busy_timeout", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logger.Debug("failed to set sqlite journal_mode=WAL", zap.Error(err))
	}
	// synchronous=NORMAL is safe with WAL and much faster than FULL.
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logger.Debug("failed to set sqlite synchronous=NORMAL", zap.Error(err))
	}

	store := &Store{db: db, dbPath: path, logger: logger}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	store.detectVecExtension()
	logger.Debug("store initialized",
		zap.String("path", path), zap.Bool("sqlite_vec", store.vectorExt))

	return store, nil
}

// SetEmbeddingEngine configures the embedding engine used by the
// knowledge base. Must be set before StoreDocument / SearchKnowledge.
func (s *Store) SetEmbeddingEngine(engine embedding.Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.embeddingEngine = engine
}

// detectVecExtension probes for the sqlite-vec extension. When absent
// the knowledge base falls back to a cosine scan in Go.
func (s *Store) detectVecExtension() {
	var version string
	if err := s.db.QueryRow("SELECT vec_version()").Scan(&version); err == nil {
		s.vectorExt = true
		s.logger.Debug("sqlite-vec extension detected", zap.String("version", version))
	}
}

// Close releases the embedding engine, if it holds resources, and
// closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if closer, ok := s.embeddingEngine.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn("failed to close embedding engine", zap.Error(err))
		}
	}
	return s.db.Close()
}
