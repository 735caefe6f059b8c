// Package store defines the key-value persistence contract consumed by the
// pseudonym engine, the audit journal, and the quota governor, together with
// memory, Redis, and Postgres backends.
package store

import (
	"context"
	"errors"
)

// ErrItemTooLarge reports that a single item exceeded the backend's per-item
// size limit. The quota governor relies on this being distinguishable from
// other write failures.
var ErrItemTooLarge = errors.New("store: item exceeds per-item size limit")

// KV is the persistence substrate contract. Values are opaque byte slices;
// callers serialize their own records. BytesInUse with an empty key reports
// usage across all keys.
type KV interface {
	Get(ctx context.Context, keys []string) (map[string][]byte, error)
	Set(ctx context.Context, items map[string][]byte) error
	Remove(ctx context.Context, keys []string) error
	BytesInUse(ctx context.Context, key string) (int64, error)
	Close() error
}

// Persisted key names. These form the stable wire format; renames go through
// MigrateKeys.
const (
	KeyCorrespondenceTable = "correspondence_table"
	KeyPseudonymCounters   = "pseudonym_counters"
	KeyAuditJournal        = "audit_journal"
)

// legacyKeys maps retired key names to their current replacements
var legacyKeys = map[string]string{
	"anonymizator_table":    KeyCorrespondenceTable,
	"anonymizator_counters": KeyPseudonymCounters,
	"anonymizator_journal":  KeyAuditJournal,
}

// MigrateKeys copies values stored under legacy key names to their current
// names, without overwriting existing data. Legacy keys are retained for a
// grace period; PurgeLegacyKeys removes them.
func MigrateKeys(ctx context.Context, kv KV) error {
	old := make([]string, 0, len(legacyKeys))
	for k := range legacyKeys {
		old = append(old, k)
	}

	values, err := kv.Get(ctx, old)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}

	current, err := kv.Get(ctx, []string{KeyCorrespondenceTable, KeyPseudonymCounters, KeyAuditJournal})
	if err != nil {
		return err
	}

	migrated := make(map[string][]byte)
	for oldKey, newKey := range legacyKeys {
		v, ok := values[oldKey]
		if !ok {
			continue
		}
		if _, exists := current[newKey]; exists {
			continue
		}
		migrated[newKey] = v
	}

	if len(migrated) == 0 {
		return nil
	}
	return kv.Set(ctx, migrated)
}

// PurgeLegacyKeys removes retired key names after the migration grace period
func PurgeLegacyKeys(ctx context.Context, kv KV) error {
	old := make([]string, 0, len(legacyKeys))
	for k := range legacyKeys {
		old = append(old, k)
	}
	return kv.Remove(ctx, old)
}
