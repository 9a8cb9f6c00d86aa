// Package memory provides an in-process model.Store used when no database
// is configured.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dtroode/modulehub/internal/model"
)

// Options describe how Store reads and assigns record keys.
type Options[T any, ID comparable] struct {
	// KeyField is the JSON name of the key field.
	KeyField string
	KeyOf    func(record T) ID
	WithKey  func(record T, id ID) T
	// NextKey generates keys on Create. When nil records bring their own key.
	NextKey func() ID
	// Unique lists fields whose values must not repeat across records.
	Unique []string
	// CreatedField and UpdatedField name timestamp fields maintained by Store.
	CreatedField string
	UpdatedField string
}

// Store keeps records in insertion order behind a mutex.
type Store[T any, ID comparable] struct {
	mu      sync.RWMutex
	opts    Options[T, ID]
	records map[ID]T
	keys    []ID
	fields  map[string]bool
	now     func() time.Time
}

// New creates an empty Store.
func New[T any, ID comparable](opts Options[T, ID]) *Store[T, ID] {
	var zero T
	fields := make(map[string]bool)
	if doc, err := toDoc(zero); err == nil {
		for k := range doc {
			fields[k] = true
		}
	}

	return &Store[T, ID]{
		opts:    opts,
		records: make(map[ID]T),
		fields:  fields,
		now:     time.Now,
	}
}

func (s *Store[T, ID]) Create(_ context.Context, record T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	id := s.opts.KeyOf(record)
	if s.opts.NextKey != nil {
		id = s.opts.NextKey()
		record = s.opts.WithKey(record, id)
	}
	if _, ok := s.records[id]; ok {
		return zero, fmt.Errorf("failed to create record %v: %w", id, model.ErrConflict)
	}

	doc, err := toDoc(record)
	if err != nil {
		return zero, err
	}
	now := s.now().UTC()
	s.setTime(doc, s.opts.CreatedField, now)
	s.setTime(doc, s.opts.UpdatedField, now)

	if err := s.checkUnique(doc, id, false); err != nil {
		return zero, err
	}

	record, err = fromDoc[T](doc)
	if err != nil {
		return zero, err
	}

	s.records[id] = record
	s.keys = append(s.keys, id)

	return record, nil
}

func (s *Store[T, ID]) Find(_ context.Context, filter model.Filter) ([]T, error) {
	if err := s.checkFields(filter.Where); err != nil {
		return nil, err
	}
	terms, err := s.parseOrder(filter.Order)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type match struct {
		record T
		doc    map[string]any
	}
	matches := make([]match, 0)
	for _, id := range s.keys {
		record := s.records[id]
		doc, err := toDoc(record)
		if err != nil {
			return nil, err
		}
		if matchesWhere(doc, filter.Where) {
			matches = append(matches, match{record: record, doc: doc})
		}
	}

	if len(terms) > 0 {
		sort.SliceStable(matches, func(i, j int) bool {
			for _, term := range terms {
				c := compare(matches[i].doc[term.field], matches[j].doc[term.field])
				if c == 0 {
					continue
				}
				if term.desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(matches) {
			matches = matches[:0]
		} else {
			matches = matches[filter.Offset:]
		}
	}
	if filter.Limit > 0 && filter.Limit < len(matches) {
		matches = matches[:filter.Limit]
	}

	records := make([]T, 0, len(matches))
	for _, m := range matches {
		records = append(records, m.record)
	}

	return records, nil
}

func (s *Store[T, ID]) FindByID(_ context.Context, id ID) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		var zero T
		return zero, model.ErrNotFound
	}

	return record, nil
}

func (s *Store[T, ID]) Count(_ context.Context, where model.Where) (int64, error) {
	if err := s.checkFields(where); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, id := range s.keys {
		doc, err := toDoc(s.records[id])
		if err != nil {
			return 0, err
		}
		if matchesWhere(doc, where) {
			n++
		}
	}

	return n, nil
}

func (s *Store[T, ID]) UpdateByID(_ context.Context, id ID, patch model.Patch) error {
	if err := s.checkPatch(patch); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return model.ErrNotFound
	}

	updated, err := s.apply(record, id, patch)
	if err != nil {
		return err
	}
	s.records[id] = updated

	return nil
}

func (s *Store[T, ID]) ReplaceByID(_ context.Context, id ID, record T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[id]
	if !ok {
		return model.ErrNotFound
	}

	doc, err := toDoc(s.opts.WithKey(record, id))
	if err != nil {
		return err
	}
	if s.opts.CreatedField != "" {
		old, err := toDoc(existing)
		if err != nil {
			return err
		}
		doc[s.opts.CreatedField] = old[s.opts.CreatedField]
	}
	s.setTime(doc, s.opts.UpdatedField, s.now().UTC())

	if err := s.checkUnique(doc, id, true); err != nil {
		return err
	}

	replaced, err := fromDoc[T](doc)
	if err != nil {
		return err
	}
	s.records[id] = replaced

	return nil
}

func (s *Store[T, ID]) DeleteByID(_ context.Context, id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return model.ErrNotFound
	}

	delete(s.records, id)
	for i, k := range s.keys {
		if k == id {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}

	return nil
}

func (s *Store[T, ID]) UpdateAll(_ context.Context, patch model.Patch, where model.Where) (int64, error) {
	if err := s.checkFields(where); err != nil {
		return 0, err
	}
	if err := s.checkPatch(patch); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, id := range s.keys {
		record := s.records[id]
		doc, err := toDoc(record)
		if err != nil {
			return n, err
		}
		if !matchesWhere(doc, where) {
			continue
		}
		if len(patch) > 0 {
			updated, err := s.apply(record, id, patch)
			if err != nil {
				return n, err
			}
			s.records[id] = updated
		}
		n++
	}

	return n, nil
}

func (s *Store[T, ID]) apply(record T, id ID, patch model.Patch) (T, error) {
	var zero T
	if len(patch) == 0 {
		return record, nil
	}

	doc, err := toDoc(record)
	if err != nil {
		return zero, err
	}
	for field, value := range patch {
		doc[field] = value
	}
	s.setTime(doc, s.opts.UpdatedField, s.now().UTC())

	if err := s.checkUnique(doc, id, true); err != nil {
		return zero, err
	}

	return fromDoc[T](doc)
}

func (s *Store[T, ID]) setTime(doc map[string]any, field string, t time.Time) {
	if field != "" {
		doc[field] = t
	}
}

func (s *Store[T, ID]) checkFields(where model.Where) error {
	for field := range where {
		if !s.fields[field] {
			return model.NewInputError(fmt.Sprintf("unknown field %q", field))
		}
	}
	return nil
}

func (s *Store[T, ID]) checkPatch(patch model.Patch) error {
	for field := range patch {
		readOnly := field == s.opts.KeyField || field == s.opts.CreatedField || field == s.opts.UpdatedField
		if !s.fields[field] || readOnly {
			return model.NewInputError(fmt.Sprintf("field %q cannot be updated", field))
		}
		if patch[field] == nil {
			return model.NewInputError(fmt.Sprintf("field %q cannot be null", field))
		}
	}
	return nil
}

// checkUnique must be called with the write lock held.
func (s *Store[T, ID]) checkUnique(doc map[string]any, id ID, exists bool) error {
	for _, field := range s.opts.Unique {
		for _, other := range s.keys {
			if exists && other == id {
				continue
			}
			otherDoc, err := toDoc(s.records[other])
			if err != nil {
				return err
			}
			if equal(doc[field], otherDoc[field]) {
				return fmt.Errorf("failed to store record: %q is taken: %w", field, model.ErrConflict)
			}
		}
	}
	return nil
}

type orderTerm struct {
	field string
	desc  bool
}

func (s *Store[T, ID]) parseOrder(order []string) ([]orderTerm, error) {
	terms := make([]orderTerm, 0, len(order))
	for _, o := range order {
		parts := strings.Fields(o)
		if len(parts) == 0 || len(parts) > 2 {
			return nil, model.NewInputError(fmt.Sprintf("invalid order %q", o))
		}
		if !s.fields[parts[0]] {
			return nil, model.NewInputError(fmt.Sprintf("unknown field %q", parts[0]))
		}
		term := orderTerm{field: parts[0]}
		if len(parts) == 2 {
			switch strings.ToUpper(parts[1]) {
			case "ASC":
			case "DESC":
				term.desc = true
			default:
				return nil, model.NewInputError(fmt.Sprintf("invalid order direction %q", parts[1]))
			}
		}
		terms = append(terms, term)
	}
	return terms, nil
}

func matchesWhere(doc map[string]any, where model.Where) bool {
	for field, want := range where {
		if !equal(doc[field], want) {
			return false
		}
	}
	return true
}

func equal(a, b any) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func compare(a, b any) int {
	na, nb := normalize(a), normalize(b)
	if fa, ok := na.(float64); ok {
		if fb, ok := nb.(float64); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(na), fmt.Sprint(nb))
}

// normalize maps values decoded from JSON and values supplied by callers
// onto a common representation.
func normalize(v any) any {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return n.String()
		}
		return f
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case fmt.Stringer:
		return n.String()
	}
	return v
}

func toDoc(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	doc := make(map[string]any)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}

	return doc, nil
}

func fromDoc[T any](doc map[string]any) (T, error) {
	var record T

	raw, err := json.Marshal(doc)
	if err != nil {
		return record, fmt.Errorf("failed to encode record: %w", err)
	}
	if err := json.Unmarshal(raw, &record); err != nil {
		return record, fmt.Errorf("%w: %v", model.NewInputError("invalid field value"), err)
	}

	return record, nil
}
