// Package settings persists user preferences as key/value pairs in
// settings.json and exposes them through typed accessors.
package settings

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"grilltimer/internal/logging"
	"grilltimer/internal/storage"
)

const fileName = "settings.json"

// Store is a JSON-backed key/value store. Every Set is written through.
type Store struct {
	mu     sync.RWMutex
	st     *storage.Storage
	values map[string]json.RawMessage
	logger *slog.Logger
}

// Open loads the store from st. A damaged file is recovered or reset by the
// storage layer; the store is usable either way.
func Open(st *storage.Storage, logger *slog.Logger) (*Store, error) {
	s := &Store{
		st:     st,
		values: map[string]json.RawMessage{},
		logger: logging.OrDiscard(logger),
	}
	if err := st.LoadJSON(fileName, &s.values); err != nil {
		s.logger.Warn("settings recovered", "error", err)
	}
	if s.values == nil {
		s.values = map[string]json.RawMessage{}
	}
	return s, nil
}

// Get decodes the value under key into v. It reports false when the key is
// absent or its value does not decode into v.
func (s *Store) Get(key string, v any) bool {
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.logger.Warn("ignoring undecodable setting", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores v under key and persists the store.
func (s *Store) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	s.values[key] = raw
	if err := s.st.SaveJSON(fileName, s.values); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}

// Update decodes the value under key into v, lets fn change it and persists
// the result, all under the store lock. fn returns false to leave the store
// untouched. An absent or undecodable value reaches fn as v's zero state.
func (s *Store) Update(key string, v any, fn func() bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	if had {
		if err := json.Unmarshal(prev, v); err != nil {
			s.logger.Warn("ignoring undecodable setting", "key", key, "error", err)
		}
	}
	if !fn() {
		return false, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("encode setting %s: %w", key, err)
	}
	s.values[key] = raw
	if err := s.st.SaveJSON(fileName, s.values); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return false, fmt.Errorf("save setting %s: %w", key, err)
	}
	return true, nil
}

// Delete removes key and persists the store.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	if !had {
		return nil
	}
	delete(s.values, key)
	if err := s.st.SaveJSON(fileName, s.values); err != nil {
		s.values[key] = prev
		return fmt.Errorf("delete setting %s: %w", key, err)
	}
	return nil
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bool returns the boolean under key, or def.
func (s *Store) Bool(key string, def bool) bool {
	v := def
	if !s.Get(key, &v) {
		return def
	}
	return v
}

// Int returns the integer under key, or def.
func (s *Store) Int(key string, def int) int {
	v := def
	if !s.Get(key, &v) {
		return def
	}
	return v
}

// String returns the string under key, or def.
func (s *Store) String(key string, def string) string {
	v := def
	if !s.Get(key, &v) {
		return def
	}
	return v
}
