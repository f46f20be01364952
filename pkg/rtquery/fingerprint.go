package rtquery

import (
	"encoding/hex"
	"sort"

	sha256 "github.com/minio/sha256-simd"
)

// Fingerprint identifies the request: which entities, which fields. Chaining order
// does not matter - requesting op1 then op2 hashes the same as op2 then op1 - because
// the cached value is the same either way; order only matters to the materializer's
// internal bookkeeping. Usable before or after Materialize.
func (q *Query) Fingerprint() string {
	opsPerEntity := map[string][]string{}
	for _, selector := range q.selectors {
		opsPerEntity[selector.EntityID] = append(opsPerEntity[selector.EntityID], selector.Op)
	}

	entityIDs := make([]string, 0, len(opsPerEntity))
	for entityID := range opsPerEntity {
		entityIDs = append(entityIDs, entityID)
	}
	sort.Strings(entityIDs)

	hash := sha256.New()
	for _, entityID := range entityIDs {
		ops := opsPerEntity[entityID]
		sort.Strings(ops)

		hash.Write([]byte(entityID))
		hash.Write([]byte{0})
		for _, op := range ops {
			hash.Write([]byte(op))
			hash.Write([]byte{1})
		}
		hash.Write([]byte{2})
	}

	return hex.EncodeToString(hash.Sum(nil))
}
