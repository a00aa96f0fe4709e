// Package database provides SQLite database connectivity for daikinthing.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Connection pooling and lifecycle management
//
// The reading-history repository in internal/history owns its own
// single-table schema and creates it on startup; there is no separate
// migration framework.
//
// Security Considerations:
//   - All queries use parameterised statements (no SQL injection)
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Performance Characteristics:
//   - WAL mode allows concurrent reads during writes
//   - Busy timeout prevents lock contention errors
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: "./data/daikinthing.db", WALMode: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
package database
