package domain

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Discharge is the archived copy of a record removed from the store.
type Discharge struct {
	// Key is a ULID, so archive order follows discharge time.
	Key string `json:"key" yaml:"key"`

	Patient Patient `json:"patient" yaml:"patient"`

	// DischargedAt is Unix milliseconds.
	DischargedAt int64 `json:"discharged_at" yaml:"discharged_at"`
}

// NewDischarge stamps p with a fresh key and the current time.
func NewDischarge(p Patient) (*Discharge, error) {
	now := time.Now()
	key, err := GenerateDischargeKey(now)
	if err != nil {
		return nil, err
	}
	return &Discharge{
		Key:          key,
		Patient:      p,
		DischargedAt: now.UnixMilli(),
	}, nil
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// GenerateDischargeKey returns a ULID for t. Keys generated within the same
// millisecond still sort in generation order.
func GenerateDischargeKey(t time.Time) (string, error) {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// DischargedAtTime returns DischargedAt as time.Time.
func (d *Discharge) DischargedAtTime() time.Time {
	return time.UnixMilli(d.DischargedAt)
}
