// Package memory provides the in-memory record store for medrec.
//
// The store keeps active patient records in admission order and enforces
// the unique-id invariant on insert.
//
// Features:
//
//   - Ordered Storage: records enumerate in the order they were admitted
//   - Id Index: sharded index answers uniqueness checks without a scan
//   - Full Replace: load and restore swap the whole record set at once
//
// Thread Safety:
//
// All operations are thread-safe. Read operations use RLock,
// write operations use Lock.
package memory
