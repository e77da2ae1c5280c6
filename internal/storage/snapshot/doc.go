// Package snapshot manages the primary record file and the schedule file.
//
// Every save is a full rewrite:
//
//  1. Encode into <file>.tmp in the data directory
//  2. fsync the temp file
//  3. Rename over the live file
//
// A crash therefore leaves either the previous or the new file, never a
// mix. Load reports an absent file as domain.ErrNotPresent so that the
// caller can start empty on first run.
package snapshot
