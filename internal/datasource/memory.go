package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/seenimoa/finratios/pkg/models"
	"github.com/seenimoa/finratios/pkg/utils"
)

// MemorySource serves statement records held in memory.
type MemorySource struct {
	mu   sync.RWMutex
	data map[string]map[models.StatementKind][]models.RawRecord
}

// NewMemorySource creates an empty in-memory statement source.
func NewMemorySource() *MemorySource {
	return &MemorySource{data: make(map[string]map[models.StatementKind][]models.RawRecord)}
}

// Add appends records of a kind for a ticker.
func (m *MemorySource) Add(ticker string, kind models.StatementKind, recs ...models.RawRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byKind, ok := m.data[ticker]
	if !ok {
		byKind = make(map[models.StatementKind][]models.RawRecord)
		m.data[ticker] = byKind
	}
	byKind[kind] = append(byKind[kind], recs...)
}

// Records returns the stored records in insertion order.
func (m *MemorySource) Records(_ context.Context, ticker string, kind models.StatementKind) ([]models.RawRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs, ok := m.data[ticker][kind]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", ticker, kind, ErrStatementsNotFound)
	}
	out := make([]models.RawRecord, len(recs))
	copy(out, recs)
	return out, nil
}

// MemoryPrices serves close prices held in memory.
type MemoryPrices struct {
	mu     sync.RWMutex
	closes map[string]float64
}

// NewMemoryPrices creates an empty in-memory price lookup.
func NewMemoryPrices() *MemoryPrices {
	return &MemoryPrices{closes: make(map[string]float64)}
}

// Set records the close of ticker on date.
func (m *MemoryPrices) Set(ticker string, date time.Time, close float64) {
	m.mu.Lock()
	m.closes[priceKey(ticker, date)] = close
	m.mu.Unlock()
}

// Close returns the close stored for the exact date.
func (m *MemoryPrices) Close(_ context.Context, ticker string, date time.Time) (float64, error) {
	m.mu.RLock()
	v, ok := m.closes[priceKey(ticker, date)]
	m.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%s on %s: %w", ticker, utils.DateKey(date), ErrPriceNotFound)
	}
	return v, nil
}

func priceKey(ticker string, date time.Time) string {
	return ticker + "|" + utils.DateKey(date)
}
