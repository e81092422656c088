package words

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/scythe504/leaguedraw/internal"
	"github.com/scythe504/leaguedraw/internal/utils"
)

// MemoryBank keeps every word in process. It backs local runs without a
// database and the engine tests.
type MemoryBank struct {
	mu    sync.RWMutex
	words map[string]map[string]internal.WordData
	order map[string][]string
}

func NewMemoryBank(rows ...internal.WordData) *MemoryBank {
	b := &MemoryBank{
		words: make(map[string]map[string]internal.WordData),
		order: make(map[string][]string),
	}
	for _, row := range rows {
		b.Add(row)
	}
	return b
}

func NewMemoryBankFromCsv(path string) (*MemoryBank, error) {
	rows, err := utils.ReadCsvFile(path)
	if err != nil {
		return nil, err
	}
	return NewMemoryBank(rows...), nil
}

func (b *MemoryBank) Add(row internal.WordData) {
	b.mu.Lock()
	defer b.mu.Unlock()

	byId, ok := b.words[row.Category]
	if !ok {
		byId = make(map[string]internal.WordData)
		b.words[row.Category] = byId
	}
	if _, exists := byId[row.Id]; !exists {
		b.order[row.Category] = append(b.order[row.Category], row.Id)
	}
	byId[row.Id] = row
}

func (b *MemoryBank) Lookup(ctx context.Context, choice internal.WordChoice) (internal.WordData, error) {
	if err := ctx.Err(); err != nil {
		return internal.WordData{}, err
	}
	if !IsCategory(choice.Category) {
		return internal.WordData{}, fmt.Errorf("%w: %q", ErrUnknownCategory, choice.Category)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	row, ok := b.words[choice.Category][choice.Id]
	if !ok {
		return internal.WordData{}, fmt.Errorf("%w: %s/%s", ErrWordNotFound, choice.Category, choice.Id)
	}
	return row, nil
}

func (b *MemoryBank) Pool(ctx context.Context, categories []string) ([]internal.WordChoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	var pool []internal.WordChoice
	seen := make(map[string]bool, len(categories))
	for _, category := range categories {
		if !IsCategory(category) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
		}
		if seen[category] {
			continue
		}
		seen[category] = true
		for _, id := range b.order[category] {
			pool = append(pool, internal.WordChoice{Id: id, Category: category})
		}
	}
	return slices.Clip(pool), nil
}

func (b *MemoryBank) Health(ctx context.Context) error {
	return ctx.Err()
}
