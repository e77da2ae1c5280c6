// Package service provides the records service for medrec.
//
// Records owns the patient store and the weekly shift schedule and is the
// single mutual-exclusion boundary around them. Persistence, backup and
// the discharge archive are injected through the SnapshotStore,
// BackupStore and DischargeArchive interfaces.
//
// Reports (totals, shifts per doctor, room usage, discharges) are read-only
// views over the same state.
package service
