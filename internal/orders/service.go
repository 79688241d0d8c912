package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/storefrontlabs/storefront/pkg/errors"
	"github.com/storefrontlabs/storefront/pkg/pagination"
)

// Service defines the read surface over the order ledger.
type Service interface {
	History(ctx context.Context, userID uuid.UUID, params pagination.Params) (*HistoryResult, error)
}

type service struct {
	orders Repository
}

// NewService constructs an orders service with the provided dependencies.
func NewService(orders Repository) (Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	return &service{orders: orders}, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID, params pagination.Params) (*HistoryResult, error) {
	rows, err := s.orders.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	result := &HistoryResult{Orders: make([]OrderDTO, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for i := range rows {
		result.Orders = append(result.Orders, *FromModel(&rows[i]))
	}
	if hasMore {
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.OrderedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}
