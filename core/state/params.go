package state

import (
	"fmt"
	"sort"

	"treasurechain/native/params"
)

type settingRecord struct {
	Key         string
	StringValue string
	HasAsset    bool
	Asset       assetRecord
	UintValue   uint32
	UpdatedAt   uint64
}

// ParamStoreSet stores a raw system parameter.
func (m *Manager) ParamStoreSet(name string, value []byte) error {
	if name == "" {
		return fmt.Errorf("param name must not be empty")
	}
	return m.trie.Update(kvKey(ParamStoreKey(name)), append([]byte(nil), value...))
}

// ParamStoreGet loads a raw system parameter.
func (m *Manager) ParamStoreGet(name string) ([]byte, bool, error) {
	data, err := m.trie.Get(kvKey(ParamStoreKey(name)))
	if err != nil {
		return nil, false, err
	}
	if len(data) == 0 {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

// SettingGet loads an economic setting.
func (m *Manager) SettingGet(key string) (*params.Setting, bool, error) {
	var rec settingRecord
	ok, err := m.KVGet(SettingKey(key), &rec)
	if err != nil || !ok {
		return nil, false, err
	}
	setting := &params.Setting{
		Key:         rec.Key,
		StringValue: rec.StringValue,
		UintValue:   rec.UintValue,
		UpdatedAt:   int64(rec.UpdatedAt),
	}
	if rec.HasAsset {
		asset := rec.Asset.asset()
		setting.AssetValue = &asset
	}
	return setting, true, nil
}

// SettingPut stores an economic setting and indexes its key.
func (m *Manager) SettingPut(setting *params.Setting) error {
	if setting == nil {
		return fmt.Errorf("nil setting")
	}
	rec := settingRecord{
		Key:         setting.Key,
		StringValue: setting.StringValue,
		UintValue:   setting.UintValue,
		UpdatedAt:   unixToUint(setting.UpdatedAt),
		Asset:       assetRecord{Amount: nonNil(nil)},
	}
	if setting.AssetValue != nil {
		asset, err := newAssetRecord(*setting.AssetValue)
		if err != nil {
			return err
		}
		rec.HasAsset = true
		rec.Asset = asset
	}
	if err := m.KVPut(SettingKey(rec.Key), rec); err != nil {
		return err
	}
	return m.KVAppend(SettingIndexKey(), []byte(rec.Key))
}

// SettingDelete removes a setting.
func (m *Manager) SettingDelete(key string) error {
	if err := m.KVDelete(SettingKey(key)); err != nil {
		return err
	}
	return m.KVRemove(SettingIndexKey(), []byte(key))
}

// SettingKeys lists stored setting keys in sorted order.
func (m *Manager) SettingKeys() ([]string, error) {
	var list [][]byte
	if err := m.KVGetList(SettingIndexKey(), &list); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(list))
	for _, key := range list {
		out = append(out, string(key))
	}
	sort.Strings(out)
	return out, nil
}
