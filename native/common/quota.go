package common

import (
	"fmt"
	"math"
)

var (
	ErrQuotaExceeded        = fmt.Errorf("%w: quota exceeded", ErrStateConflict)
	ErrQuotaCounterOverflow = fmt.Errorf("%w: quota counter overflow", ErrConservation)
)

// QuotaNow captures the current usage counter for an address.
type QuotaNow struct {
	Count   uint32
	EpochID uint64
}

// Quota defines the limit enforced for an interaction per address. A zero
// MaxPerEpoch disables the limit.
type Quota struct {
	MaxPerEpoch  uint32
	EpochSeconds uint32
}

// Epoch maps a unix timestamp onto the quota epoch.
func (q Quota) Epoch(now int64) uint64 {
	if q.EpochSeconds == 0 || now <= 0 {
		return 0
	}
	return uint64(now) / uint64(q.EpochSeconds)
}

// CheckQuota verifies whether add more requests fit within the quota. The
// returned QuotaNow reflects the updated counter when the quota is not
// exceeded; on denial prev is returned unchanged.
func CheckQuota(q Quota, nowEpoch uint64, prev QuotaNow, add uint32) (QuotaNow, error) {
	next := prev
	if prev.EpochID != nowEpoch {
		next = QuotaNow{EpochID: nowEpoch}
	}
	if add > 0 {
		if next.Count > math.MaxUint32-add {
			return prev, ErrQuotaCounterOverflow
		}
		next.Count += add
	}
	if q.MaxPerEpoch > 0 && next.Count > q.MaxPerEpoch {
		return prev, ErrQuotaExceeded
	}
	return next, nil
}
