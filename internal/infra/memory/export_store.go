package memory

import (
	"context"
	"sync"

	"powercars-survey-service/internal/app"
	"powercars-survey-service/internal/domain"
)

// ExportStore keeps export artifacts in process memory. Used when no Redis
// instance is configured; artifacts live until restart.
type ExportStore struct {
	mu      sync.RWMutex
	exports map[string][]byte
}

func NewExportStore() *ExportStore {
	return &ExportStore{exports: make(map[string][]byte)}
}

var _ app.ExportStore = (*ExportStore)(nil)

func (s *ExportStore) SaveExport(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.exports[name] = buf
	return nil
}

func (s *ExportStore) Export(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.exports[name]
	if !ok {
		return nil, domain.ErrExportNotFound
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}
