package rule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"verdict/internal/logger"
)

// ErrNotFound 目标规则不存在。
var ErrNotFound = errors.New("rule not found")

// Persister 可选的持久化后端；为 nil 时规则集只存在于内存。
type Persister interface {
	SaveRule(r Rule) error
	SaveEnabled(id string, enabled bool) error
	SaveCounters(id string, executed, matched int64) error
}

// Store 活动规则集合。读多写少：评估走快照，变更串行。
type Store struct {
	mu      sync.RWMutex
	rules   map[string]Rule
	persist Persister
}

// NewStore builds an empty store; persist may be nil.
func NewStore(persist Persister) *Store {
	return &Store{rules: make(map[string]Rule), persist: persist}
}

// List returns every rule (enabled and disabled), priority-descending.
func (s *Store) List() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(false)
}

// Snapshot returns the enabled rules only, priority-descending.
// Callers iterate the returned slice without further locking;
// a concurrent update is only visible to later snapshots.
func (s *Store) Snapshot() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(true)
}

func (s *Store) sortedLocked(enabledOnly bool) []Rule {
	out := make([]Rule, 0, len(s.rules))
	for _, r := range s.rules {
		if enabledOnly && !r.Enabled {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Get returns the rule with the given id.
func (s *Store) Get(id string) (Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[strings.TrimSpace(id)]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, nil
}

// Create validates and inserts a rule, assigning an id when absent.
func (s *Store) Create(r Rule) (Rule, error) {
	if strings.TrimSpace(string(r.Type)) == "" {
		return Rule{}, fmt.Errorf("rule type cannot be empty")
	}
	if strings.TrimSpace(r.ID) == "" {
		r.ID = "rule-" + uuid.NewString()
	}
	if r.Priority <= 0 {
		r.Priority = 5
	}
	if r.Priority > 10 {
		r.Priority = 10
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	s.mu.Lock()
	if _, exists := s.rules[r.ID]; exists {
		s.mu.Unlock()
		return Rule{}, fmt.Errorf("rule id already exists: %s", r.ID)
	}
	s.rules[r.ID] = r
	s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.SaveRule(r); err != nil {
			logger.Warnf("persisting rule %s failed: %v", r.ID, err)
		}
	}
	return r, nil
}

// SetEnabled toggles a rule; unknown ids yield ErrNotFound.
func (s *Store) SetEnabled(id string, enabled bool) error {
	id = strings.TrimSpace(id)
	s.mu.Lock()
	r, ok := s.rules[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.Enabled = enabled
	s.rules[id] = r
	s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.SaveEnabled(id, enabled); err != nil {
			logger.Warnf("persisting enabled flag for %s failed: %v", id, err)
		}
	}
	return nil
}

// Replace swaps the whole collection atomically (registry reload path).
// Disabled flags of surviving ids are preserved so a file reload does not
// silently re-enable an operator-disabled rule.
func (s *Store) Replace(rules []Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(map[string]Rule, len(rules))
	for _, r := range rules {
		if prev, ok := s.rules[r.ID]; ok {
			r.Enabled = prev.Enabled
			r.ExecutedCount = prev.ExecutedCount
			r.MatchedCount = prev.MatchedCount
			r.CreatedAt = prev.CreatedAt
		}
		next[r.ID] = r
	}
	s.rules = next
}

// RecordExecution bumps usage counters from a finished evaluation.
func (s *Store) RecordExecution(results []ExecutionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, res := range results {
		r, ok := s.rules[res.RuleID]
		if !ok {
			continue
		}
		r.ExecutedCount++
		if res.ConditionsMet {
			r.MatchedCount++
		}
		s.rules[res.RuleID] = r
		if s.persist != nil {
			if err := s.persist.SaveCounters(r.ID, r.ExecutedCount, r.MatchedCount); err != nil {
				logger.Debugf("persisting counters for %s failed: %v", r.ID, err)
			}
		}
	}
}

// Len returns the number of rules in the collection.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}
