// Package store owns the application state: selected coordinates, panel
// configuration, the latest result and the query currently in flight.
// Store is a value type updated only from the Bubble Tea update loop, which
// makes every change atomic relative to rendering.
package store

import (
	"errors"

	"github.com/ngmaloney/solar-terminal/internal/models"
)

var (
	// ErrNoLocation is returned by Begin before a position is selected
	ErrNoLocation = errors.New("no location selected")

	// ErrBusy is returned by Begin while a query is in flight
	ErrBusy = errors.New("calculation already in progress")
)

// Query is a snapshot of the inputs for one calculation
type Query struct {
	ID       uint64
	Position models.Position
	Panel    models.PanelConfig
}

// Store is the single consistency boundary of the application
type Store struct {
	Coords Coordinates
	Panel  Panel

	result   *models.IrradiationResult
	err      error
	inflight uint64
	seq      uint64
}

// New creates a store with no position and the given panel defaults
func New(panel models.PanelConfig) Store {
	return Store{Panel: NewPanel(panel)}
}

// Loading reports whether a query is in flight
func (s Store) Loading() bool {
	return s.inflight != 0
}

// CanCalculate reports whether the trigger is enabled
func (s Store) CanCalculate() bool {
	return s.Coords.position != nil && !s.Loading()
}

// Result returns the latest successful result, or nil
func (s Store) Result() *models.IrradiationResult {
	return s.result
}

// Err returns the error of the last failed query, or nil
func (s Store) Err() error {
	return s.err
}

// Begin snapshots the current inputs and marks a query as in flight
func (s *Store) Begin() (Query, error) {
	pos := s.Coords.Position()
	if pos == nil {
		return Query{}, ErrNoLocation
	}
	if s.Loading() {
		return Query{}, ErrBusy
	}

	s.seq++
	s.inflight = s.seq
	s.err = nil
	return Query{
		ID:       s.seq,
		Position: *pos,
		Panel:    s.Panel.Config(),
	}, nil
}

// Complete records the outcome of query id. A success replaces the result,
// a failure drops it. Completions for any other id are ignored; the return
// value reports whether the outcome was applied.
func (s *Store) Complete(id uint64, result *models.IrradiationResult, err error) bool {
	if id == 0 || id != s.inflight {
		return false
	}
	s.inflight = 0

	if err != nil || result == nil {
		if err == nil {
			err = errors.New("empty result")
		}
		s.result = nil
		s.err = err
		return true
	}

	s.result = result
	s.err = nil
	return true
}
