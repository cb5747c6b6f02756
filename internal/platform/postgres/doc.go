// Package postgres provides PostgreSQL implementations of the store
// interfaces, the embedded goose migrations that create their schema, and
// the retry policy for transactions that lose a serialization race.
package postgres
