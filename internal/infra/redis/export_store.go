package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"powercars-survey-service/internal/app"
	"powercars-survey-service/internal/domain"
)

const exportKeyPrefix = "survey:export:"

// ExportStore keeps export artifacts in Redis with a TTL so download links
// survive instance restarts but still expire on their own.
type ExportStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewExportStore(client *redis.Client, ttl time.Duration) *ExportStore {
	return &ExportStore{client: client, ttl: ttl}
}

var _ app.ExportStore = (*ExportStore)(nil)

func (s *ExportStore) SaveExport(ctx context.Context, name string, data []byte) error {
	return s.client.Set(ctx, exportKeyPrefix+name, data, s.ttl).Err()
}

func (s *ExportStore) Export(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(ctx, exportKeyPrefix+name).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrExportNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}
