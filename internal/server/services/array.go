package services

import (
	"sync"

	"github.com/dmitrijs2005/keygate/internal/common"
)

// DefaultArray is the content a fresh ArrayService starts with.
func DefaultArray() []any {
	return []any{"first", "second", "third"}
}

// ArrayService is a process-local list of JSON values shared by all
// clients. Methods return copies; callers never hold the backing slice.
type ArrayService struct {
	mu    sync.RWMutex
	items []any
}

// NewArrayService starts from a copy of initial.
func NewArrayService(initial []any) *ArrayService {
	return &ArrayService{items: append([]any{}, initial...)}
}

func (s *ArrayService) All() []any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *ArrayService) Get(i int) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.inRange(i) {
		return nil, common.ErrIndexOutOfRange
	}
	return s.items[i], nil
}

// Append adds v at the end and returns the new content.
func (s *ArrayService) Append(v any) []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, v)
	return s.snapshot()
}

func (s *ArrayService) Update(i int, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inRange(i) {
		return common.ErrIndexOutOfRange
	}
	s.items[i] = v
	return nil
}

// DeleteLast removes the last element and returns it with the remaining
// content.
func (s *ArrayService) DeleteLast() (any, []any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return nil, nil, common.ErrArrayEmpty
	}
	last := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return last, s.snapshot(), nil
}

// Reset overwrites element i with 0; the length does not change.
func (s *ArrayService) Reset(i int) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inRange(i) {
		return nil, common.ErrIndexOutOfRange
	}
	s.items[i] = 0
	return s.snapshot(), nil
}

func (s *ArrayService) inRange(i int) bool {
	return i >= 0 && i < len(s.items)
}

func (s *ArrayService) snapshot() []any {
	return append([]any{}, s.items...)
}
