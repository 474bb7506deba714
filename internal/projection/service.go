package projection

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	v1 "github.com/aevon-lab/reorder-features/internal/api/v1"
	"github.com/aevon-lab/reorder-features/internal/core/aggregation"
	"github.com/aevon-lab/reorder-features/internal/core/storage"
	"golang.org/x/sync/singleflight"
)

// sharedQueryTimeout bounds a store query shared by concurrent lookups. The query
// runs detached from any single caller's context.
const sharedQueryTimeout = 30 * time.Second

var (
	// ErrUserNotFound means the merged table has no rows for the user.
	ErrUserNotFound = errors.New("user has no features")
	// ErrProductNotFound means the user never purchased the product.
	ErrProductNotFound = errors.New("product has no features for user")
)

// Service serves feature rows from the merged table.
// Concurrent lookups of the same user share one store query.
type Service struct {
	store storage.ResultStore
	group singleflight.Group
}

func NewService(store storage.ResultStore) *Service {
	if store == nil {
		panic("projection: store must not be nil")
	}
	return &Service{store: store}
}

// UserFeatures returns the user's rows in merged order. A missing merged table is
// reported as storage.ErrNotFound.
func (s *Service) UserFeatures(ctx context.Context, userID int64) (v1.UserFeatures, error) {
	records, err := s.queryUser(ctx, userID)
	if err != nil {
		return v1.UserFeatures{}, err
	}
	return v1.NewUserFeatures(userID, records), nil
}

func (s *Service) ProductFeatures(ctx context.Context, userID, productID int64) (v1.ProductFeatures, error) {
	records, err := s.queryUser(ctx, userID)
	if err != nil {
		return v1.ProductFeatures{}, err
	}
	for _, r := range records {
		if r.ProductID == productID {
			return v1.NewProductFeatures(r), nil
		}
	}
	return v1.ProductFeatures{}, fmt.Errorf("user %d product %d: %w", userID, productID, ErrProductNotFound)
}

func (s *Service) queryUser(ctx context.Context, userID int64) ([]aggregation.FeatureRecord, error) {
	ch := s.group.DoChan(strconv.FormatInt(userID, 10), func() (interface{}, error) {
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedQueryTimeout)
		defer cancel()
		return s.store.QueryUser(qctx, userID)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("query user %d: %w", userID, ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, fmt.Errorf("query user %d: %w", userID, res.Err)
	}
	records := res.Val.([]aggregation.FeatureRecord)
	if len(records) == 0 {
		return nil, fmt.Errorf("user %d: %w", userID, ErrUserNotFound)
	}
	return records, nil
}
