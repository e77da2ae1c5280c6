// Package domain defines the core domain models for medrec.
//
// Domain models are pure value objects without any IO dependencies or
// framework coupling. This package contains:
//
//   - Patient: admission record and its validation rules
//   - Schedule: the 7 x 3 weekly doctor shift grid
//   - Discharge: archived copy of a discharged record
//   - Errors: coded domain errors (validation, lookup, I/O)
package domain
