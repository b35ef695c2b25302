// Package replica implements the replication endpoint: a small HTTPS
// server accepting row batches from other devices and a three-way
// merger deciding per row between insert, no-op, merge, keep and
// overwrite based on the audit timestamps of both sides.
package replica
