// Package codec implements the fixed binary layout of medrec record files.
//
// A file holds a record count, that many fixed-size record blocks and,
// for backups, the 7 x 3 schedule block. The versioned layout prefixes a
// header carrying the field widths and appends a sha256 trailer; the
// legacy layout has neither and is still readable.
//
// Layout (little-endian, 4-byte signed integers):
//
//	[magic "MDRC"][version u16][name width u16][diagnosis width u16][flags u16]
//	[count]
//	count x [id][name][age][diagnosis][room]
//	[21 x name, when flags has FlagSchedule]
//	[sha256 of everything above]
//
// The first and last lines are absent in the legacy layout.
package codec
