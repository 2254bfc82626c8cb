package expense

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jdoshi/famledger/pkg/pagination"
)

// MemoryStore provides an in-memory implementation of Store for testing
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]*Expense
}

// NewMemoryStore creates a new in-memory expense store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]*Expense)}
}

func (s *MemoryStore) Create(ctx context.Context, e *Expense) (*Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *e
	cp.ID = uuid.New().String()
	now := time.Now().UTC()
	cp.CreatedOn = now
	cp.LastModifiedOn = now
	s.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok || e.Deleted {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (s *MemoryStore) Update(ctx context.Context, e *Expense) (*Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[e.ID]
	if !ok || existing.Deleted {
		return nil, ErrExpenseNotFound
	}

	cp := *e
	cp.CreatedOn = existing.CreatedOn
	cp.LastModifiedOn = time.Now().UTC()
	s.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *MemoryStore) SoftDelete(ctx context.Context, id, deletedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok || e.Deleted {
		return ErrExpenseNotFound
	}
	now := time.Now().UTC()
	e.Deleted = true
	e.DeletedOn = &now
	e.DeletedBy = &deletedBy
	e.LastModifiedOn = now
	return nil
}

func matches(e *Expense, f Filter) bool {
	if e.Deleted {
		return false
	}
	if f.FamilyID != "" {
		if e.FamilyID == nil || *e.FamilyID != f.FamilyID {
			return false
		}
	} else if e.UserID != f.UserID {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if !f.Start.IsZero() && e.Date.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && e.Date.After(f.End) {
		return false
	}
	if !f.Since.IsZero() && e.LastModifiedOn.Before(f.Since) {
		return false
	}
	if !f.SinceDate.IsZero() && e.Date.Before(f.SinceDate) {
		return false
	}
	return true
}

// sortCmp compares two expenses on a sort field: -1, 0 or 1
func sortCmp(a, b *Expense, field string) int {
	switch field {
	case "amount":
		return a.Amount.Cmp(b.Amount)
	case "category":
		switch {
		case a.Category < b.Category:
			return -1
		case a.Category > b.Category:
			return 1
		}
		return 0
	case "created_on":
		return a.CreatedOn.Compare(b.CreatedOn)
	case "last_modified_on":
		return a.LastModifiedOn.Compare(b.LastModifiedOn)
	default:
		return a.Date.Compare(b.Date)
	}
}

func (s *MemoryStore) filtered(f Filter) []*Expense {
	var out []*Expense
	for _, e := range s.items {
		if matches(e, f) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out
}

func (s *MemoryStore) List(ctx context.Context, f Filter, p pagination.Params) (*ListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.filtered(f)

	asc := p.Direction == pagination.Ascending
	field := p.SortBy
	sort.Slice(items, func(i, j int) bool {
		c := sortCmp(items[i], items[j], field)
		if c == 0 {
			if asc {
				return items[i].ID < items[j].ID
			}
			return items[i].ID > items[j].ID
		}
		if asc {
			return c < 0
		}
		return c > 0
	})

	total := len(items)

	if p.CursorMode() {
		after := -1
		for i, e := range items {
			if e.ID == p.Cursor {
				after = i
				break
			}
		}
		items = items[after+1:]
		if len(items) > p.Size {
			items = items[:p.Size]
		}
		return &ListResult{Items: items, Total: total}, nil
	}

	start := p.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + p.Size
	if end > len(items) {
		end = len(items)
	}
	return &ListResult{Items: items[start:end], Total: total}, nil
}

func inMonth(t time.Time, month, year int) bool {
	return t.Year() == year && int(t.Month()) == month
}

func (s *MemoryStore) MonthlySum(ctx context.Context, userID string, month, year int) (*MonthlySum, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := &MonthlySum{Month: month, Year: year, Total: decimal.Zero}
	for _, e := range s.items {
		if e.Deleted || e.UserID != userID || e.FamilyID != nil {
			continue
		}
		if inMonth(e.Date.UTC(), month, year) {
			sum.Total = sum.Total.Add(e.Amount)
			sum.Count++
		}
	}
	return sum, nil
}

func (s *MemoryStore) FamilyMonthlySum(ctx context.Context, familyID string, month, year int) (*MonthlySum, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := &MonthlySum{Month: month, Year: year, Total: decimal.Zero}
	for _, e := range s.items {
		if e.Deleted || e.FamilyID == nil || *e.FamilyID != familyID {
			continue
		}
		if inMonth(e.Date.UTC(), month, year) {
			sum.Total = sum.Total.Add(e.Amount)
			sum.Count++
		}
	}
	return sum, nil
}

func (s *MemoryStore) ListWindow(ctx context.Context, f Filter, start, end time.Time) ([]*Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Expense
	for _, e := range s.filtered(f) {
		if !e.Date.Before(start) && e.Date.Before(end) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *MemoryStore) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	for id, e := range s.items {
		if e.Deleted && e.DeletedOn != nil && e.DeletedOn.Before(cutoff) {
			delete(s.items, id)
			purged++
		}
	}
	return purged, nil
}
