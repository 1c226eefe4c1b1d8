package params

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"treasurechain/config"
	"treasurechain/core/events"
	"treasurechain/core/types"
	"treasurechain/native/common"
)

var (
	ErrSettingExists   = fmt.Errorf("%w: setting already exists", common.ErrStateConflict)
	ErrSettingNotFound = fmt.Errorf("%w: setting not found", common.ErrNotFound)
	errNilState        = errors.New("params: state not configured")
)

// StoreState captures the subset of state manager capabilities required by the
// parameter helpers.
type StoreState interface {
	ParamStoreSet(name string, value []byte) error
	ParamStoreGet(name string) ([]byte, bool, error)
	SettingGet(key string) (*Setting, bool, error)
	SettingPut(setting *Setting) error
	SettingDelete(key string) error
	SettingKeys() ([]string, error)
	HasRole(role string, addr []byte) bool
}

// Store provides typed accessors for operator-controlled parameters.
type Store struct {
	state    StoreState
	defaults map[string]Setting
	emitter  events.Emitter
	nowFn    func() int64
}

// NewStore constructs a parameter store wrapper using the supplied state
// backend. base selects the denomination of base currency defaults.
func NewStore(state StoreState, base types.Symbol) *Store {
	return &Store{
		state:    state,
		defaults: Defaults(base),
		emitter:  events.NoopEmitter{},
		nowFn:    func() int64 { return time.Now().Unix() },
	}
}

// SetEmitter configures the event emitter used by the store.
func (s *Store) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		s.emitter = events.NoopEmitter{}
		return
	}
	s.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (s *Store) SetNowFunc(now func() int64) {
	if now == nil {
		s.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	s.nowFn = now
}

func (s *Store) withState() (StoreState, error) {
	if s == nil || s.state == nil {
		return nil, errNilState
	}
	return s.state, nil
}

// AddSetting inserts a new setting. Requires the operator capability.
func (s *Store) AddSetting(auth common.Authority, setting Setting) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	if err := auth.RequireRole(state, common.RoleOperator); err != nil {
		return err
	}
	if err := validateSetting(&setting); err != nil {
		return err
	}
	if err := s.matchDefaultSymbol(&setting); err != nil {
		return err
	}
	_, exists, err := state.SettingGet(setting.Key)
	if err != nil {
		return err
	}
	if exists {
		return ErrSettingExists
	}
	setting.UpdatedAt = s.nowFn()
	if err := state.SettingPut(&setting); err != nil {
		return err
	}
	s.emitter.Emit(WrapEvent(SettingChangedEvent(EventTypeSettingAdded, &setting)))
	return nil
}

// ModSetting overwrites an existing setting. Requires the operator capability.
func (s *Store) ModSetting(auth common.Authority, setting Setting) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	if err := auth.RequireRole(state, common.RoleOperator); err != nil {
		return err
	}
	if err := validateSetting(&setting); err != nil {
		return err
	}
	if err := s.matchDefaultSymbol(&setting); err != nil {
		return err
	}
	_, exists, err := state.SettingGet(setting.Key)
	if err != nil {
		return err
	}
	if !exists {
		return ErrSettingNotFound
	}
	setting.UpdatedAt = s.nowFn()
	if err := state.SettingPut(&setting); err != nil {
		return err
	}
	s.emitter.Emit(WrapEvent(SettingChangedEvent(EventTypeSettingModified, &setting)))
	return nil
}

// matchDefaultSymbol keeps asset settings in the denomination of their
// built-in default.
func (s *Store) matchDefaultSymbol(setting *Setting) error {
	def, ok := s.defaults[setting.Key]
	if !ok || def.AssetValue == nil || setting.AssetValue == nil {
		return nil
	}
	if setting.AssetValue.Symbol != def.AssetValue.Symbol {
		return fmt.Errorf("%w: %s must be denominated in %s", common.ErrValidation, setting.Key, def.AssetValue.Symbol)
	}
	return nil
}

// EraseSetting removes a setting so readers fall back to the default.
func (s *Store) EraseSetting(auth common.Authority, key string) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	if err := auth.RequireRole(state, common.RoleOperator); err != nil {
		return err
	}
	existing, exists, err := state.SettingGet(key)
	if err != nil {
		return err
	}
	if !exists {
		return ErrSettingNotFound
	}
	if err := state.SettingDelete(key); err != nil {
		return err
	}
	s.emitter.Emit(WrapEvent(SettingChangedEvent(EventTypeSettingErased, existing)))
	return nil
}

// Param returns the stored setting or the built-in default. A missing key
// without default yields ok=false and no error.
func (s *Store) Param(key string) (Setting, bool, error) {
	state, err := s.withState()
	if err != nil {
		return Setting{}, false, err
	}
	stored, ok, err := state.SettingGet(key)
	if err != nil {
		return Setting{}, false, err
	}
	if ok && stored != nil {
		return *stored.Clone(), true, nil
	}
	def, ok := s.defaults[key]
	if !ok {
		return Setting{}, false, nil
	}
	return *def.Clone(), true, nil
}

// Asset returns the asset value of key, falling back to the default.
func (s *Store) Asset(key string) (types.Asset, error) {
	setting, ok, err := s.Param(key)
	if err != nil {
		return types.Asset{}, err
	}
	if !ok || setting.AssetValue == nil {
		def, hasDef := s.defaults[key]
		if !hasDef || def.AssetValue == nil {
			return types.Asset{}, fmt.Errorf("%w: no asset value for %s", common.ErrNotFound, key)
		}
		return def.AssetValue.Clone(), nil
	}
	return setting.AssetValue.Clone(), nil
}

// Uint returns the unsigned value of key, falling back to the default.
func (s *Store) Uint(key string) (uint32, error) {
	setting, ok, err := s.Param(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return setting.UintValue, nil
}

// List returns every stored setting ordered by key.
func (s *Store) List() ([]Setting, error) {
	state, err := s.withState()
	if err != nil {
		return nil, err
	}
	keys, err := state.SettingKeys()
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	out := make([]Setting, 0, len(keys))
	for _, key := range keys {
		setting, ok, err := state.SettingGet(key)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, *setting)
		}
	}
	return out, nil
}

// SetPauses persists the supplied pause configuration under the canonical
// parameter store key. Values are marshalled as JSON.
func (s *Store) SetPauses(pauses config.Pauses) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(pauses)
	if err != nil {
		return fmt.Errorf("params: encode pauses: %w", err)
	}
	return state.ParamStoreSet(ParamsKeyPauses, encoded)
}

// ApplyPauses is the operator action wrapping SetPauses.
func (s *Store) ApplyPauses(auth common.Authority, pauses config.Pauses) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	if err := auth.RequireRole(state, common.RoleOperator); err != nil {
		return err
	}
	if err := s.SetPauses(pauses); err != nil {
		return err
	}
	s.emitter.Emit(WrapEvent(PausesChangedEvent(pauses)))
	return nil
}

// Pauses loads the persisted pause configuration. When unset, a zero-value
// configuration is returned.
func (s *Store) Pauses() (config.Pauses, error) {
	state, err := s.withState()
	if err != nil {
		return config.Pauses{}, err
	}
	raw, ok, err := state.ParamStoreGet(ParamsKeyPauses)
	if err != nil {
		return config.Pauses{}, err
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return config.Pauses{}, nil
	}
	var pauses config.Pauses
	if err := json.Unmarshal(raw, &pauses); err != nil {
		return config.Pauses{}, fmt.Errorf("params: decode pauses: %w", err)
	}
	return pauses, nil
}

// IsPaused implements common.PauseView. An unreadable pause record keeps the
// module paused.
func (s *Store) IsPaused(module string) bool {
	pauses, err := s.Pauses()
	if err != nil {
		return true
	}
	return pauses.IsPaused(module)
}
