// Package main provides the entry point for medrec.
//
// medrec keeps hospital patient admission records and a weekly doctor
// shift schedule in local binary files, with a backup copy that can be
// restored in full:
//
//   - Patient admission, search and discharge
//   - Doctor schedule (7 days x 3 shifts)
//   - Backup and restore (file, S3 / MinIO)
//   - Reports (patients, shifts, rooms, discharged)
//
// Usage:
//
//	medrec                       # interactive menu
//	medrec patient add --id 1 --name Alice --age 30 --room 101
//	medrec -o json patient list
//	medrec backup create
//
// Configuration is read from ~/.medrec/medrec.yaml, MEDREC_* environment
// variables and flags, in increasing priority.
package main
