package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/yndnr/medrec/internal/core/domain"
	"github.com/yndnr/medrec/pkg/crypto/adaptive"
)

const (
	prefixDischarge = "discharge/"

	keySalt     = "meta/salt"
	keyCipher   = "meta/cipher"
	keyKeyCheck = "meta/keycheck"

	subkeyInfo    = "medrec/discharge-archive"
	keyCheckPlain = "medrec-archive"

	// DefaultGCInterval is the value log GC period for on-disk archives.
	DefaultGCInterval = 10 * time.Minute

	gcDiscardRatio = 0.5
)

var (
	// ErrWrongKey is returned when the configured secret does not open a
	// sealed archive.
	ErrWrongKey = errors.New("archive: encryption key does not match archive")

	// ErrKeyRequired is returned when a sealed archive is opened without a
	// secret.
	ErrKeyRequired = errors.New("archive: archive is encrypted, security.encryption_key required")
)

// Config configures the archive.
type Config struct {
	Dir string

	// InMemory keeps everything in memory (tests). Dir is ignored.
	InMemory bool

	SyncWrites bool

	// GCInterval is the value log GC period. Zero uses the default;
	// negative disables GC.
	GCInterval time.Duration

	// Secret seals values when set.
	Secret adaptive.Secret
}

// Archive stores discharge entries.
type Archive struct {
	db     *badger.DB
	cipher adaptive.Cipher
	logger *slog.Logger

	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
}

// Open opens or creates the archive.
func Open(cfg Config, logger *slog.Logger) (*Archive, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, fmt.Errorf("archive: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = &badgerLogger{logger: logger}
	opts.SyncWrites = cfg.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, domain.ErrUnreadable.WithDetails("open archive").WithCause(err)
	}

	a := &Archive{
		db:     db,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	if err := a.setupCipher(cfg.Secret); err != nil {
		db.Close()
		return nil, err
	}

	interval := cfg.GCInterval
	if interval == 0 {
		interval = DefaultGCInterval
	}
	if cfg.InMemory || interval < 0 {
		close(a.doneCh)
	} else {
		go a.gcLoop(interval)
	}

	logger.Info("discharge archive opened",
		"dir", cfg.Dir,
		"in_memory", cfg.InMemory,
		"sealed", a.cipher != nil)

	return a, nil
}

// setupCipher derives the archive cipher and checks it against the stored
// key check value.
func (a *Archive) setupCipher(secret adaptive.Secret) error {
	check, err := a.getRaw(keyKeyCheck)
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return domain.ErrUnreadable.WithDetails("archive key check").WithCause(err)
	}
	sealed := err == nil

	if secret.IsZero() {
		if sealed {
			return ErrKeyRequired
		}
		return nil
	}

	var salt []byte
	if secret.NeedsSalt() {
		salt, err = a.getRaw(keySalt)
		if errors.Is(err, badger.ErrKeyNotFound) {
			if salt, err = adaptive.NewSalt(); err != nil {
				return err
			}
			if err := a.setRaw(keySalt, salt); err != nil {
				return err
			}
		} else if err != nil {
			return domain.ErrUnreadable.WithDetails("archive salt").WithCause(err)
		}
	}

	master, err := secret.MasterKey(salt)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	sub, err := adaptive.Subkey(master, subkeyInfo)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	defer adaptive.ZeroKey(sub)

	// The cipher type is pinned on first use so the archive opens on any
	// architecture.
	var c adaptive.Cipher
	typ, err := a.getRaw(keyCipher)
	switch {
	case err == nil:
		c, err = adaptive.NewWithType(sub, adaptive.CipherType(typ))
	case errors.Is(err, badger.ErrKeyNotFound):
		if c, err = adaptive.New(sub); err == nil {
			err = a.setRaw(keyCipher, []byte(c.Type()))
		}
	}
	if err != nil {
		return fmt.Errorf("archive: cipher: %w", err)
	}

	if sealed {
		plain, err := c.Decrypt(check, []byte(keyKeyCheck))
		if err != nil || string(plain) != keyCheckPlain {
			return ErrWrongKey
		}
	} else if err := a.seal(c); err != nil {
		return err
	}

	a.cipher = c
	return nil
}

// seal encrypts entries written while the archive had no key and stores
// the key check, all in one transaction.
func (a *Archive) seal(c adaptive.Cipher) error {
	check, err := c.Encrypt([]byte(keyCheckPlain), []byte(keyKeyCheck))
	if err != nil {
		return fmt.Errorf("archive: seal key check: %w", err)
	}

	resealed := 0
	err = a.db.Update(func(txn *badger.Txn) error {
		type entry struct{ key, value []byte }
		var plain []entry

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixDischarge)
		it := txn.NewIterator(opts)
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				it.Close()
				return err
			}
			plain = append(plain, entry{key: item.KeyCopy(nil), value: value})
		}
		it.Close()

		for _, e := range plain {
			sealed, err := c.Encrypt(e.value, e.key)
			if err != nil {
				return fmt.Errorf("seal %s: %w", e.key, err)
			}
			if err := txn.Set(e.key, sealed); err != nil {
				return err
			}
		}
		resealed = len(plain)
		return txn.Set([]byte(keyKeyCheck), check)
	})
	if err != nil {
		return domain.ErrUnwritable.WithDetails("archive seal").WithCause(err)
	}

	if resealed > 0 {
		a.logger.Info("archive entries sealed", "entries", resealed)
	}
	return nil
}

// Sealed reports whether values are encrypted.
func (a *Archive) Sealed() bool {
	return a.cipher != nil
}

// Record stores a discharge entry.
func (a *Archive) Record(ctx context.Context, d *domain.Discharge) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(prefixDischarge + d.Key)
	value, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("archive: marshal: %w", err)
	}
	if a.cipher != nil {
		if value, err = a.cipher.Encrypt(value, key); err != nil {
			return fmt.Errorf("archive: seal: %w", err)
		}
	}

	if err := a.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	}); err != nil {
		return domain.ErrUnwritable.WithDetails("archive record").WithCause(err)
	}
	return nil
}

// List returns every entry in discharge order.
func (a *Archive) List(ctx context.Context) ([]domain.Discharge, error) {
	var out []domain.Discharge

	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixDischarge)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			d, err := a.decode(item.KeyCopy(nil), value)
			if err != nil {
				return err
			}
			out = append(out, d)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, domain.ErrUnreadable.WithDetails("archive list").WithCause(err)
	}
	return out, nil
}

// Count returns the number of entries.
func (a *Archive) Count(ctx context.Context) (int, error) {
	n := 0
	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixDischarge)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, err
		}
		return 0, domain.ErrUnreadable.WithDetails("archive count").WithCause(err)
	}
	return n, nil
}

// Size returns the LSM and value log sizes in bytes.
func (a *Archive) Size() (lsm, vlog int64) {
	return a.db.Size()
}

// Close stops GC and closes the database.
func (a *Archive) Close() error {
	var err error
	a.closeOnce.Do(func() {
		select {
		case <-a.doneCh:
		default:
			close(a.stopCh)
			<-a.doneCh
		}
		if cerr := a.db.Close(); cerr != nil {
			err = fmt.Errorf("archive: close: %w", cerr)
		}
	})
	return err
}

func (a *Archive) decode(key, value []byte) (domain.Discharge, error) {
	var d domain.Discharge
	if a.cipher != nil {
		plain, err := a.cipher.Decrypt(value, key)
		if err != nil {
			return d, fmt.Errorf("archive: open %s: %w", key, err)
		}
		value = plain
	}
	if err := json.Unmarshal(value, &d); err != nil {
		return d, fmt.Errorf("archive: unmarshal %s: %w", key, err)
	}
	return d, nil
}

func (a *Archive) getRaw(key string) ([]byte, error) {
	var value []byte
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	return value, err
}

func (a *Archive) setRaw(key string, value []byte) error {
	err := a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return domain.ErrUnwritable.WithDetails(key).WithCause(err)
	}
	return nil
}

// gcLoop runs value log GC periodically.
func (a *Archive) gcLoop(interval time.Duration) {
	defer close(a.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.runGC()
		case <-a.stopCh:
			return
		}
	}
}

func (a *Archive) runGC() {
	start := time.Now()
	rounds := 0
	for {
		err := a.db.RunValueLogGC(gcDiscardRatio)
		if err != nil {
			if !errors.Is(err, badger.ErrNoRewrite) {
				a.logger.Error("archive gc failed", "error", err)
			}
			break
		}
		rounds++
	}
	if rounds > 0 {
		a.logger.Info("archive gc completed", "rounds", rounds, "elapsed", time.Since(start))
	}
}
