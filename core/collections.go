package core

import (
	"errors"
	"fmt"
	"strconv"
)

// KeySegment encodes s as "<len>:<s>" so that joining segments with "/"
// cannot make two different sequences produce the same key.
func KeySegment(s string) string {
	return strconv.Itoa(len(s)) + ":" + s
}

// LookupMap is a key-value map stored under a common prefix.
// It cannot be iterated, pair it with an UnorderedSet when listing is needed.
type LookupMap[V any] struct {
	ctx    Context
	prefix string
}

func NewLookupMap[V any](ctx Context, prefix string) *LookupMap[V] {
	return &LookupMap[V]{ctx: ctx, prefix: prefix}
}

func (m *LookupMap[V]) key(k string) string {
	return m.prefix + "/" + KeySegment(k)
}

// Get returns the value stored under k and whether it was present
func (m *LookupMap[V]) Get(k string) (V, bool, error) {
	var v V
	err := m.ctx.Get(m.key(k), &v)
	if errors.Is(err, ErrNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, fmt.Errorf("lookup map %s: %w", m.prefix, err)
	}
	return v, true, nil
}

// Contains reports whether k holds a value
func (m *LookupMap[V]) Contains(k string) (bool, error) {
	ok, err := m.ctx.Has(m.key(k))
	if err != nil {
		return false, fmt.Errorf("lookup map %s: %w", m.prefix, err)
	}
	return ok, nil
}

// Insert stores v under k and reports whether k already held a value
func (m *LookupMap[V]) Insert(k string, v V) (bool, error) {
	existed, err := m.Contains(k)
	if err != nil {
		return false, err
	}
	if err := m.ctx.Set(m.key(k), v); err != nil {
		return existed, fmt.Errorf("lookup map %s: %w", m.prefix, err)
	}
	return existed, nil
}

// UnorderedSet is an iterable set of strings.
//
// Layout under prefix:
//
//	<prefix>/len        number of elements
//	<prefix>/i/<n>      element at index n
//	<prefix>/e/<elem>   index of elem, elem encoded with KeySegment
type UnorderedSet struct {
	ctx    Context
	prefix string
}

func NewUnorderedSet(ctx Context, prefix string) *UnorderedSet {
	return &UnorderedSet{ctx: ctx, prefix: prefix}
}

func (s *UnorderedSet) lenKey() string {
	return s.prefix + "/len"
}

func (s *UnorderedSet) indexKey(n uint64) string {
	return s.prefix + "/i/" + strconv.FormatUint(n, 10)
}

func (s *UnorderedSet) elemKey(elem string) string {
	return s.prefix + "/e/" + KeySegment(elem)
}

// Len returns the number of elements
func (s *UnorderedSet) Len() (uint64, error) {
	var n uint64
	err := s.ctx.Get(s.lenKey(), &n)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("unordered set %s: %w", s.prefix, err)
	}
	return n, nil
}

func (s *UnorderedSet) Contains(elem string) (bool, error) {
	ok, err := s.ctx.Has(s.elemKey(elem))
	if err != nil {
		return false, fmt.Errorf("unordered set %s: %w", s.prefix, err)
	}
	return ok, nil
}

// Insert adds elem and reports whether it was newly added
func (s *UnorderedSet) Insert(elem string) (bool, error) {
	present, err := s.Contains(elem)
	if err != nil || present {
		return false, err
	}
	n, err := s.Len()
	if err != nil {
		return false, err
	}
	if err := s.ctx.Set(s.indexKey(n), elem); err != nil {
		return false, fmt.Errorf("unordered set %s: %w", s.prefix, err)
	}
	if err := s.ctx.Set(s.elemKey(elem), n); err != nil {
		return false, fmt.Errorf("unordered set %s: %w", s.prefix, err)
	}
	if err := s.ctx.Set(s.lenKey(), n+1); err != nil {
		return false, fmt.Errorf("unordered set %s: %w", s.prefix, err)
	}
	return true, nil
}

// Elements returns all elements in index order
func (s *UnorderedSet) Elements() ([]string, error) {
	n, err := s.Len()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for i := uint64(0); i < n; i++ {
		var elem string
		if err := s.ctx.Get(s.indexKey(i), &elem); err != nil {
			return nil, fmt.Errorf("unordered set %s: %w", s.prefix, err)
		}
		out = append(out, elem)
	}
	return out, nil
}
