// Package params implements the two-tier parameter registry.
//
// Known parameters are declared statically with a default, an
// optional settings-file key and an optional database persistence
// flag. Free-form parameters (remembered dialog geometry and the
// like) live in a second map with no declaration at all.
//
// Read order for a known key: settings-file override, then the value
// currently loaded in memory, then the declared default. Save
// rewrites the settings document atomically and upserts all
// db-persisted known entries into MA_Parameter.
package params

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"homebook/internal/entity"
	"homebook/internal/repo"
	"homebook/internal/store"
)

// Well-known parameter keys.
const (
	KeyLoginClient    = "LoginClient"
	KeyLoginUser      = "LoginUser"
	KeyNoLogin        = "OHNE_ANMELDUNG"
	KeyReplicationUID = "REPLIKATION_UID"
	KeyStartDialogs   = "AG_STARTDIALOGE"
	KeyBackups        = "AG_BACKUPS"
	KeyTestProduction = "AG_TEST_PRODUKTION"
)

// Tenant scopes for db-persisted parameters.
const (
	// ScopeShared stores the value under tenant 0, visible to all.
	ScopeShared = 0
	// ScopePerTenant resolves to the active session tenant.
	ScopePerTenant = -1
)

// Descriptor declares a known parameter.
type Descriptor struct {
	Key     string
	Default string
	// FileKey is the settings-document key, empty when the value is
	// not persisted to the file.
	FileKey string
	// InDB marks the parameter for MA_Parameter persistence.
	InDB bool
	// TenantScope is ScopeShared or ScopePerTenant; only meaningful
	// when InDB is set.
	TenantScope int
}

// known is the static registry. Order is irrelevant; lookup is by key.
var known = map[string]Descriptor{
	KeyLoginClient:    {Key: KeyLoginClient, Default: "1", FileKey: "login_client"},
	KeyLoginUser:      {Key: KeyLoginUser, FileKey: "login_user"},
	KeyNoLogin:        {Key: KeyNoLogin, InDB: true, TenantScope: ScopePerTenant},
	KeyReplicationUID: {Key: KeyReplicationUID, InDB: true, TenantScope: ScopePerTenant},
	KeyStartDialogs:   {Key: KeyStartDialogs, InDB: true, TenantScope: ScopePerTenant},
	KeyBackups:        {Key: KeyBackups, InDB: true, TenantScope: ScopeShared},
	KeyTestProduction: {Key: KeyTestProduction, Default: "Produktion", InDB: true, TenantScope: ScopeShared},
}

// Store is the in-process parameter registry. Two independent locks
// guard the two tiers; callers that touch both acquire the known lock
// first (Save does), never the other way around.
type Store struct {
	muKnown sync.RWMutex
	muFree  sync.RWMutex

	path   string
	file   map[string]string // settings-document overrides, by file key
	values map[string]string // loaded/known values, by parameter key
	free   map[string]string // free-form tier
}

// NewStore creates an empty registry bound to a settings path.
func NewStore(path string) *Store {
	return &Store{
		path:   path,
		file:   make(map[string]string),
		values: make(map[string]string),
		free:   make(map[string]string),
	}
}

// Path returns the settings-document path.
func (s *Store) Path() string { return s.path }

// Get resolves a known parameter: file override, memory, default.
// Unknown keys fall through to the free tier.
func (s *Store) Get(key string) string {
	desc, ok := known[key]
	if !ok {
		return s.GetFree(key)
	}

	s.muKnown.RLock()
	defer s.muKnown.RUnlock()
	if desc.FileKey != "" {
		if v, ok := s.file[desc.FileKey]; ok {
			return v
		}
	}
	if v, ok := s.values[key]; ok {
		return v
	}
	return desc.Default
}

// Put updates a known parameter in memory. Unknown keys land in the
// free tier.
func (s *Store) Put(key, value string) {
	desc, ok := known[key]
	if !ok {
		s.PutFree(key, value)
		return
	}

	s.muKnown.Lock()
	defer s.muKnown.Unlock()
	s.values[key] = value
	if desc.FileKey != "" {
		s.file[desc.FileKey] = value
	}
}

// GetFree reads a free-form parameter; "" when unset.
func (s *Store) GetFree(key string) string {
	s.muFree.RLock()
	defer s.muFree.RUnlock()
	return s.free[key]
}

// PutFree stores a free-form parameter.
func (s *Store) PutFree(key, value string) {
	s.muFree.Lock()
	defer s.muFree.Unlock()
	s.free[key] = value
}

// Known returns the descriptor for a key, if declared.
func Known(key string) (Descriptor, bool) {
	d, ok := known[key]
	return d, ok
}

// StartDialogs splits the AG_STARTDIALOGE list ("|"-separated dialog
// identifiers to auto-open at login).
func (s *Store) StartDialogs() []string {
	raw := s.Get(KeyStartDialogs)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	dialogs := parts[:0]
	for _, p := range parts {
		if p != "" {
			dialogs = append(dialogs, p)
		}
	}
	if len(dialogs) == 0 {
		return nil
	}
	return dialogs
}

// SetStartDialogs joins and stores the auto-open list.
func (s *Store) SetStartDialogs(dialogs []string) {
	s.Put(KeyStartDialogs, strings.Join(dialogs, "|"))
}

// LoadDB reads all db-persisted known parameters for the given tenant
// (per-tenant scope) plus the shared tenant 0 into memory.
func (s *Store) LoadDB(sc *store.Scope, paramRepo *repo.Parameters, tenant int) error {
	for key, desc := range known {
		if !desc.InDB {
			continue
		}
		rowTenant := tenant
		if desc.TenantScope == ScopeShared {
			rowTenant = 0
		}
		row, err := paramRepo.Get(sc, rowTenant, key)
		if err != nil {
			return fmt.Errorf("load parameter %s: %w", key, err)
		}
		if row == nil {
			continue
		}
		s.muKnown.Lock()
		s.values[key] = row.Value()
		s.muKnown.Unlock()
	}
	return nil
}

// SaveDB upserts all db-persisted known entries for the given tenant.
// Runs inside the caller's scope so that the writes join its undo
// group.
func (s *Store) SaveDB(sc *store.Scope, paramRepo *repo.Parameters, tenant int) error {
	keys := make([]string, 0, len(known))
	for key, desc := range known {
		if desc.InDB {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		desc := known[key]
		rowTenant := tenant
		if desc.TenantScope == ScopeShared {
			rowTenant = 0
		}
		s.muKnown.RLock()
		value, ok := s.values[key]
		s.muKnown.RUnlock()
		if !ok {
			continue
		}
		p := &entity.Parameter{MandantNr: rowTenant, Schluessel: key}
		if value != "" {
			p.Wert = &value
		}
		if _, err := paramRepo.Save(sc, p, nil); err != nil {
			return fmt.Errorf("save parameter %s: %w", key, err)
		}
	}
	return nil
}
