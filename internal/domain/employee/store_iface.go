package employee

import (
	"context"
	"time"
)

type StoreAPI interface {
	EmailLookup
	List(ctx context.Context) ([]Employee, error)
	Get(ctx context.Context, id int64) (Employee, error)
	Insert(ctx context.Context, fields Fields, now time.Time) (Employee, error)
	Update(ctx context.Context, id int64, fields Fields, now time.Time) (Employee, error)
	Delete(ctx context.Context, id int64) error
}
