package state

import "treasurechain/native/common"

// NextSequence increments the named counter and returns the new value. The
// first value handed out is 1.
func (m *Manager) NextSequence(name string) (uint64, error) {
	var current uint64
	if _, err := m.KVGet(SequenceKey(name), &current); err != nil {
		return 0, err
	}
	current++
	if err := m.KVPut(SequenceKey(name), current); err != nil {
		return 0, err
	}
	return current, nil
}

// Sequence returns the last value handed out by the named counter.
func (m *Manager) Sequence(name string) (uint64, error) {
	var current uint64
	_, err := m.KVGet(SequenceKey(name), &current)
	return current, err
}

type quotaRecord struct {
	Count   uint32
	EpochID uint64
}

// QuotaGet loads the usage counter of addr in bucket.
func (m *Manager) QuotaGet(bucket string, addr [20]byte) (common.QuotaNow, bool, error) {
	var rec quotaRecord
	ok, err := m.KVGet(QuotaKey(bucket, addr), &rec)
	if err != nil || !ok {
		return common.QuotaNow{}, false, err
	}
	return common.QuotaNow{Count: rec.Count, EpochID: rec.EpochID}, true, nil
}

// QuotaPut stores the usage counter of addr in bucket.
func (m *Manager) QuotaPut(bucket string, addr [20]byte, q common.QuotaNow) error {
	return m.KVPut(QuotaKey(bucket, addr), quotaRecord{Count: q.Count, EpochID: q.EpochID})
}
