// Package storage implements in-memory fakes of the Web Storage API, the
// objects behind window.localStorage and window.sessionStorage.
package storage

import (
	"errors"
	"slices"
	"sync"
	"unicode/utf16"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// DefaultQuota is the per-origin limit browsers commonly apply, counted in
// UTF-16 code units of keys and values.
const DefaultQuota = 5_000_000

var ErrQuotaExceeded = errors.New("storage: quota exceeded")

type Kind string

const (
	Local   Kind = "local"
	Session Kind = "session"
)

// Errs holds errors the fake returns instead of doing its work.
type Errs struct {
	Get    error
	Set    error
	Remove error
}

type Storage struct {
	mu     sync.Mutex
	kind   Kind
	keys   []string
	items  map[string]string
	used   int
	quota  int
	err    Errs
	logger *zap.Logger
}

type Opt func(*Storage)

func WithQuota(units int) Opt {
	return func(s *Storage) {
		s.quota = units
	}
}

func WithLogger(logger *zap.Logger) Opt {
	return func(s *Storage) {
		s.logger = logger
	}
}

func New(kind Kind, opts ...Opt) *Storage {
	s := &Storage{
		kind:   kind,
		items:  map[string]string{},
		quota:  DefaultQuota,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named(string(kind) + "_storage")
	return s
}

func NewLocal(opts ...Opt) *Storage   { return New(Local, opts...) }
func NewSession(opts ...Opt) *Storage { return New(Session, opts...) }

func (s *Storage) Kind() Kind { return s.kind }

// SetError makes subsequent operations fail with the given errors.
func (s *Storage) SetError(err Errs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Storage) GetItem(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err.Get != nil {
		return "", false, s.err.Get
	}
	v, ok := s.items[key]
	return v, ok, nil
}

// SetItem stores value under key. A new key goes to the end of the key order;
// an existing key keeps its position. Exceeding the quota leaves the store
// unchanged.
func (s *Storage) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err.Set != nil {
		return s.err.Set
	}
	used := s.used + units(value)
	old, exists := s.items[key]
	if exists {
		used -= units(old)
	} else {
		used += units(key)
	}
	if used > s.quota {
		s.logger.Debug("quota exceeded", zap.String("key", key), zap.Int("used", used), zap.Int("quota", s.quota))
		return ErrQuotaExceeded
	}
	if !exists {
		s.keys = append(s.keys, key)
	}
	s.items[key] = value
	s.used = used
	return nil
}

func (s *Storage) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err.Remove != nil {
		return s.err.Remove
	}
	old, ok := s.items[key]
	if !ok {
		return nil
	}
	delete(s.items, key)
	s.keys = slices.DeleteFunc(s.keys, func(k string) bool { return k == key })
	s.used -= units(key) + units(old)
	return nil
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err.Remove != nil {
		return s.err.Remove
	}
	s.keys = nil
	s.items = map[string]string{}
	s.used = 0
	return nil
}

// Reset empties the store and drops injected errors without going through
// Errs.Remove.
func (s *Storage) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = nil
	s.items = map[string]string{}
	s.used = 0
	s.err = Errs{}
}

// Key returns the name of the i-th key.
func (s *Storage) Key(i int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.keys) {
		return "", false
	}
	return s.keys[i], true
}

func (s *Storage) Length() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

func (s *Storage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.keys)
}

func (s *Storage) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make(map[string]string, len(s.items))
	for k, v := range s.items {
		res[k] = v
	}
	return res
}

func (s *Storage) MarshalJSON() ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(s.Snapshot())
}

func units(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
