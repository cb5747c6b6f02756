// Package memory implements the store interfaces in process memory.
//
// Transactions are serialized by a single lock and applied copy-on-commit, so
// a transaction that returns an error leaves no trace. It backs the service
// tests and the "memory" database driver.
package memory
