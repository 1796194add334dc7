package export

import (
	"context"
	"fmt"

	"github.com/emogo-app/core/internal/models"
)

// Lister supplies every stored record in insertion order.
type Lister interface {
	ListAll(ctx context.Context) ([]models.RecordModel, error)
}

type Service struct {
	store Lister
}

func NewService(store Lister) *Service { return &Service{store: store} }

// Rows projects the whole store through the shared projection, oldest first.
func (s *Service) Rows(ctx context.Context) ([]Row, error) {
	items, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	rows := make([]Row, len(items))
	for i := range items {
		rows[i] = buildRow(&items[i])
	}
	return rows, nil
}
