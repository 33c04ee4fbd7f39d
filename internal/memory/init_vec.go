//go:build sqlite_vec && cgo

package memory

import (
	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

func init() {
	// Register the sqlite-vec extension with the mattn/go-sqlite3 driver.
	// vec.Auto() registers it as an auto-loadable extension; NewStore
	// detects it at runtime and SearchKnowledge then ranks in SQL via
	// vec_distance_cosine instead of scanning in Go.
	vec.Auto()
}
