package leads

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/corstar/site-intake/internal/inquiry"
)

// Repository stores submissions.
type Repository interface {
	// Insert appends a row to table and returns it with its id and creation time.
	Insert(ctx context.Context, table string, sub *inquiry.Submission) (*Record, error)
	// List returns one page of records, newest first, and the total matching count.
	List(ctx context.Context, filter ListFilter) ([]*Record, int, error)
}

// InMemoryRepository keeps rows in process memory for local runs and tests.
type InMemoryRepository struct {
	mu     sync.RWMutex
	tables map[string][]*Record
	now    func() time.Time
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		tables: make(map[string][]*Record),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Insert stores a copy of sub.
func (r *InMemoryRepository) Insert(ctx context.Context, table string, sub *inquiry.Submission) (*Record, error) {
	if !knownTable(table) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := recordFrom(uuid.NewString(), sub, r.now())

	r.mu.Lock()
	r.tables[table] = append(r.tables[table], rec)
	r.mu.Unlock()

	out := *rec
	return &out, nil
}

// List pages through a table newest first.
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Record, int, error) {
	table := filter.table()
	if !knownTable(table) {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	r.mu.RLock()
	var matched []*Record
	for _, rec := range r.tables[table] {
		if filter.Intent == "" || table == inquiry.TableLeads || rec.Intent == string(filter.Intent) {
			cp := *rec
			matched = append(matched, &cp)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := filter.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	return matched[start:end], total, nil
}

// Count returns the number of rows in table.
func (r *InMemoryRepository) Count(table string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables[table])
}
