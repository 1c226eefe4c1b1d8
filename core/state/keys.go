package state

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Namespaced keys. Each is hashed with keccak256 before it reaches the trie.

func AccountKey(addr [20]byte) []byte {
	return []byte("account/" + hex.EncodeToString(addr[:]))
}

func TokenStatsKey(code string) []byte {
	return []byte("token/stats/" + code)
}

func TokenListKey() []byte { return []byte("token/list") }

func TokenBalanceKey(owner [20]byte, code string) []byte {
	return []byte(fmt.Sprintf("token/balance/%s/%s", code, hex.EncodeToString(owner[:])))
}

func TreasureKey(key uint64) []byte {
	return []byte(fmt.Sprintf("treasure/record/%d", key))
}

func TreasureIndexKey() []byte { return []byte("treasure/index") }

func SponsorAwardKey(key uint64) []byte {
	return []byte(fmt.Sprintf("sponsor/award/%d", key))
}

// SponsorQueueKey indexes the queued awards of one treasure.
func SponsorQueueKey(treasureKey uint64) []byte {
	return []byte(fmt.Sprintf("sponsor/queue/%d", treasureKey))
}

func TicketKey(kind uint8, key uint64) []byte {
	return []byte(fmt.Sprintf("ticket/%d/record/%d", kind, key))
}

func TicketIndexKey(kind uint8) []byte {
	return []byte(fmt.Sprintf("ticket/%d/index", kind))
}

func ResultKey(key uint64) []byte {
	return []byte(fmt.Sprintf("result/record/%d", key))
}

func ResultIndexKey() []byte { return []byte("result/index") }

func CrewKey(user [20]byte) []byte {
	return []byte("crew/" + hex.EncodeToString(user[:]))
}

func SettingKey(key string) []byte {
	return []byte("params/setting/" + key)
}

func SettingIndexKey() []byte { return []byte("params/setting-index") }

// ParamStoreKey holds raw system parameters such as the pause set.
func ParamStoreKey(name string) []byte {
	return []byte("params/" + name)
}

func SequenceKey(name string) []byte {
	return []byte("seq/" + name)
}

func QuotaKey(bucket string, addr [20]byte) []byte {
	return []byte(fmt.Sprintf("quota/%s/%s", bucket, hex.EncodeToString(addr[:])))
}

func encodeIndex(key uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, key)
}

func decodeIndex(list [][]byte) []uint64 {
	out := make([]uint64, 0, len(list))
	for _, raw := range list {
		if len(raw) != 8 {
			continue
		}
		out = append(out, binary.BigEndian.Uint64(raw))
	}
	return out
}
