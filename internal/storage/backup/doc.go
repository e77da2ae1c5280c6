// Package backup writes and reads the backup copy of the record store.
//
// A backup is one record file carrying the schedule block. It lives in a
// Target: a local file (default), an S3 or MinIO object, or process memory
// for tests. Each Backup overwrites the previous one; there is no history.
package backup
