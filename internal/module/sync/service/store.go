package service

import (
	"sync"
	"time"
)

// AggregateStore holds the latest fully-reconciled snapshot per chain plus
// a monotonically increasing revision counter consumers use for change
// detection. Snapshots are replaced atomically; readers never observe a
// partially-updated snapshot. The two icon mutations are copy-on-write so
// they interleave safely with an in-flight refresh: a refresh that lands
// afterwards simply supersedes them.
type AggregateStore struct {
	mu          sync.RWMutex
	revision    uint64
	snapshots   map[int]*Snapshot
	generations map[int]uint64
	lastErrors  map[int]string
}

func NewAggregateStore() *AggregateStore {
	return &AggregateStore{
		snapshots:   make(map[int]*Snapshot),
		generations: make(map[int]uint64),
		lastErrors:  make(map[int]string),
	}
}

// BeginRefresh hands out the generation token for a new refresh attempt.
// Starting a newer refresh invalidates every older in-flight one.
func (s *AggregateStore) BeginRefresh(chainID int) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[chainID]++
	return s.generations[chainID]
}

// Publish installs a snapshot produced by the given refresh generation.
// Stale generations are discarded so out-of-order completions can never
// replace newer data.
func (s *AggregateStore) Publish(chainID int, generation uint64, snapshot *Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generations[chainID] {
		return false
	}
	snapshot.UpdatedAt = time.Now()
	s.snapshots[chainID] = snapshot
	s.lastErrors[chainID] = ""
	s.revision++
	return true
}

// SetRefreshError records a failed refresh; the prior snapshot stays
// published (stale but consistent).
func (s *AggregateStore) SetRefreshError(chainID int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErrors[chainID] = err.Error()
	}
}

// Snapshot returns the current snapshot for a chain, if any, along with the
// store revision at read time.
func (s *AggregateStore) Snapshot(chainID int) (*Snapshot, uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[chainID]
	return snapshot, s.revision, ok
}

func (s *AggregateStore) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// LastError returns the failure message of the most recent refresh attempt,
// empty after a success.
func (s *AggregateStore) LastError(chainID int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErrors[chainID]
}

// MarkIconInvalid updates only the vault's own icon-validity flag. Icon
// validity can only be discovered by a client attempting to load the image,
// so this feedback arrives after the fact.
func (s *AggregateStore) MarkIconInvalid(chainID int, address Address, valid bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.snapshots[chainID]
	if !ok {
		return false
	}
	vault, ok := snapshot.Vaults[address]
	if !ok {
		return false
	}

	next := *snapshot
	next.Vaults = cloneVaultMap(snapshot.Vaults)
	patched := *vault
	patched.HasValidIcon = valid
	next.Vaults[address] = &patched

	s.snapshots[chainID] = &next
	s.revision++
	return true
}

// MarkTokenIconInvalid updates the token-icon flag. For a pure token the
// address is the token's own; otherwise it is the vault's address, and the
// vault's underlying token record is updated alongside the vault since the
// token is also listed independently.
func (s *AggregateStore) MarkTokenIconInvalid(chainID int, address Address, valid bool, isPureToken bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.snapshots[chainID]
	if !ok {
		return false
	}

	next := *snapshot
	if isPureToken {
		token, ok := snapshot.Tokens[address]
		if !ok {
			return false
		}
		next.Tokens = cloneTokenMap(snapshot.Tokens)
		patched := *token
		patched.HasValidTokenIcon = valid
		next.Tokens[address] = &patched
	} else {
		vault, ok := snapshot.Vaults[address]
		if !ok {
			return false
		}
		next.Vaults = cloneVaultMap(snapshot.Vaults)
		patchedVault := *vault
		patchedVault.HasValidTokenIcon = valid
		next.Vaults[address] = &patchedVault

		if token, ok := snapshot.Tokens[vault.Token.Address]; ok {
			next.Tokens = cloneTokenMap(snapshot.Tokens)
			patchedToken := *token
			patchedToken.HasValidTokenIcon = valid
			next.Tokens[vault.Token.Address] = &patchedToken
		}
	}

	s.snapshots[chainID] = &next
	s.revision++
	return true
}

func cloneVaultMap(vaults map[Address]*VaultRecord) map[Address]*VaultRecord {
	clone := make(map[Address]*VaultRecord, len(vaults))
	for address, record := range vaults {
		clone[address] = record
	}
	return clone
}

func cloneTokenMap(tokens map[Address]*TokenRecord) map[Address]*TokenRecord {
	clone := make(map[Address]*TokenRecord, len(tokens))
	for address, record := range tokens {
		clone[address] = record
	}
	return clone
}
