// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marketmap/internal/kv"
	"github.com/tomtom215/marketmap/internal/logging"
	"github.com/tomtom215/marketmap/internal/metrics"
	"github.com/tomtom215/marketmap/internal/models"
)

// keyPrefix versions the on-disk layout. Bumping it orphans (rather than
// corrupts) records written by incompatible builds.
const keyPrefix = "labels:v1"

// scopedBlob is the on-disk value for one scope: the scope it was written
// under plus the record map. Storing the scope inside the blob lets the read
// path reject records whose stored scope is incompatible with the key they
// were found under (legacy clients wrote partially-scoped blobs).
type scopedBlob struct {
	Scope   models.LabelScope                          `json:"scope"`
	Records map[models.LabelID]models.PersistedRecord `json:"records"`
}

// PositionStore serializes per-label records under scope-qualified keys.
type PositionStore struct {
	backend kv.Store

	// allowPartial restores the legacy read-side behavior where a missing
	// scope field matches anything. Off by default; see config.Storage.
	allowPartial bool
}

// New creates a PositionStore over the given backend.
func New(backend kv.Store, allowPartialScope bool) *PositionStore {
	return &PositionStore{backend: backend, allowPartial: allowPartialScope}
}

// Key derives the storage key for a scope. It is a pure function of the
// scope fields and stable across restarts; persistence depends on it.
func Key(scope models.LabelScope) string {
	return strings.Join([]string{keyPrefix, scope.ProjectID, scope.MapConfigID, scope.MapType}, ":")
}

// Save merges the batch into the scope's stored records and writes the
// result back. Only keys present in the batch are overwritten; existing
// records for other labels are preserved. An empty batch with force false is
// a successful no-op. Returns the number of records written.
func (p *PositionStore) Save(scope models.LabelScope, records map[models.LabelID]models.PersistedRecord, force bool) (int, error) {
	if len(records) == 0 && !force {
		return 0, nil
	}

	existing := p.Load(scope)
	for id, rec := range records {
		existing[id] = rec
	}

	blob := scopedBlob{Scope: scope, Records: existing}
	data, err := json.Marshal(blob)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("save").Inc()
		return 0, fmt.Errorf("marshal records for scope %s: %w", scope, err)
	}

	if err := p.backend.Set(Key(scope), data); err != nil {
		metrics.StoreErrors.WithLabelValues("save").Inc()
		return 0, fmt.Errorf("write records for scope %s: %w", scope, err)
	}

	metrics.StoreSaves.Inc()
	logging.Debug().
		Str("scope", scope.String()).
		Int("batch", len(records)).
		Int("total", len(existing)).
		Msg("label records saved")
	return len(records), nil
}

// Load reads and deserializes the records for a scope. Missing or corrupt
// data yields an empty map, never an error: the engine falls back to default
// positions rather than blocking rendering.
func (p *PositionStore) Load(scope models.LabelScope) map[models.LabelID]models.PersistedRecord {
	data, err := p.backend.Get(Key(scope))
	if err != nil {
		if !errors.Is(err, kv.ErrKeyNotFound) {
			metrics.StoreErrors.WithLabelValues("load").Inc()
			logging.Warn().Err(err).Str("scope", scope.String()).Msg("label record read failed, using defaults")
		}
		return map[models.LabelID]models.PersistedRecord{}
	}

	var blob scopedBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		metrics.StoreErrors.WithLabelValues("load").Inc()
		logging.Warn().Err(err).Str("scope", scope.String()).Msg("label records corrupt, using defaults")
		return map[models.LabelID]models.PersistedRecord{}
	}

	// Stored scope must be compatible with the scope we looked up. Key
	// derivation already isolates scopes; this guards blobs migrated from
	// clients that wrote incomplete scopes.
	if !blob.Scope.Matches(scope, p.allowPartial) {
		logging.Debug().
			Str("stored", blob.Scope.String()).
			Str("active", scope.String()).
			Msg("stored scope incompatible with active scope, ignoring records")
		return map[models.LabelID]models.PersistedRecord{}
	}

	if blob.Records == nil {
		return map[models.LabelID]models.PersistedRecord{}
	}
	metrics.StoreLoads.Inc()
	return blob.Records
}

// Delete clears every record for the scope.
func (p *PositionStore) Delete(scope models.LabelScope) error {
	if err := p.backend.Delete(Key(scope)); err != nil {
		metrics.StoreErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("delete records for scope %s: %w", scope, err)
	}
	return nil
}

// DeleteOne removes a single label's record from the scope, leaving the rest
// untouched.
func (p *PositionStore) DeleteOne(scope models.LabelScope, id models.LabelID) error {
	existing := p.Load(scope)
	if _, ok := existing[id]; !ok {
		return nil
	}
	delete(existing, id)

	blob := scopedBlob{Scope: scope, Records: existing}
	data, err := json.Marshal(blob)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("marshal records for scope %s: %w", scope, err)
	}
	if err := p.backend.Set(Key(scope), data); err != nil {
		metrics.StoreErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("write records for scope %s: %w", scope, err)
	}
	return nil
}
