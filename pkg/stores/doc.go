// Package stores provides the run history persistence layer for Rift.
// It includes SQLite-based storage with WAL mode, connection pooling,
// and embedded schema migrations for runs, fuse executions, and
// deployments.
package stores
