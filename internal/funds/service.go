// Package funds provides in-memory lookup over a church's funds, used
// to validate that records reference funds the church actually owns.
package funds

import (
	"context"
	"fmt"

	"github.com/stewardbooks/steward/internal/model"
	"github.com/stewardbooks/steward/internal/store"
)

// Service provides in-memory lookup over a set of funds.
type Service struct {
	funds []model.Fund
	byID  map[string]model.Fund
}

// NewService creates a Service from a slice of funds.
func NewService(funds []model.Fund) *Service {
	byID := make(map[string]model.Fund, len(funds))
	for _, f := range funds {
		byID[f.ID] = f
	}
	return &Service{funds: funds, byID: byID}
}

// Load reads a church's funds from the store and returns a Service.
func Load(ctx context.Context, st *store.Store, churchID string) (*Service, error) {
	fs, err := st.FundsByChurch(ctx, churchID)
	if err != nil {
		return nil, fmt.Errorf("loading funds: %w", err)
	}
	return NewService(fs), nil
}

// All returns all funds.
func (s *Service) All() []model.Fund {
	return s.funds
}

// Get returns a fund by ID.
func (s *Service) Get(id string) (model.Fund, bool) {
	f, ok := s.byID[id]
	return f, ok
}

// Exists reports whether a fund ID exists.
func (s *Service) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// BelongsTo reports whether a fund exists and is owned by the church.
func (s *Service) BelongsTo(id, churchID string) bool {
	f, ok := s.byID[id]
	return ok && f.ChurchID == churchID
}

// ByType returns all funds of the given type.
func (s *Service) ByType(fundType model.FundType) []model.Fund {
	var out []model.Fund
	for _, f := range s.funds {
		if f.Type == fundType {
			out = append(out, f)
		}
	}
	return out
}
