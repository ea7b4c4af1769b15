package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ProductResolver resolves a barcode to product details from an outside source
type ProductResolver interface {
	GetProduct(ctx context.Context, barcode string) (*Product, error)
}

// AdditiveLookup is the read-only view of the reference table used by the evaluator
type AdditiveLookup interface {
	Lookup(code string) (*AdditiveRecord, bool)
}
