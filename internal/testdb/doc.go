// Package testdb opens a migrated PostgreSQL database for integration tests.
//
// Tests that need a real database call Open, which skips the test when no
// database URL is configured:
//
//	db := testdb.Open(t)
//	testdb.Reset(t, db)
//
// Reset truncates every application table, so tests sharing a database must
// not run in parallel with each other.
package testdb
