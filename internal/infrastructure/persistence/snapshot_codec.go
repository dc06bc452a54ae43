package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/invoicer/backend/internal/domain/invoice"
)

func decodeSnapshot(data []byte) (*invoice.Snapshot, error) {
	var snap invoice.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// mergeSnapshot applies patch over the stored document. A nil current means
// no document exists yet.
func mergeSnapshot(current []byte, patch invoice.Snapshot) ([]byte, error) {
	return invoice.MergeJSON(current, patch)
}
