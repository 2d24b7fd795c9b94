package blob

import (
	"context"
	"fmt"

	"car-catalog/pkg/common/config"
)

// NewStore 按配置选择驱动
func NewStore(ctx context.Context, cfg config.BlobConfig) (Store, error) {
	switch cfg.Driver {
	case "minio", "":
		return NewMinioStore(ctx, cfg)
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported blob driver %q", cfg.Driver)
	}
}
