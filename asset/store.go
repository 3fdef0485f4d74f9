package asset

import "context"

type Store interface {
	Create(ctx context.Context, a *Asset) error
	Get(ctx context.Context, assetID ID) (*Asset, error)
	Update(ctx context.Context, a *Asset) error
	Exists(ctx context.Context, assetID ID) (bool, error)
	NextID(ctx context.Context) (ID, error)
	SetNextID(ctx context.Context, next ID) error
}
