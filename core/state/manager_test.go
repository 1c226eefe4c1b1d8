package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"treasurechain/core/types"
	"treasurechain/native/common"
	"treasurechain/native/params"
	"treasurechain/native/token"
	"treasurechain/native/treasure"
	"treasurechain/storage"
	"treasurechain/storage/trie"
)

var eos = types.NewSymbol("EOS", 4)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	tr, err := trie.NewTrie(db, nil)
	require.NoError(t, err)
	return NewManager(tr)
}

func TestKeyNamespaces(t *testing.T) {
	addr := [20]byte{0xaa}
	require.Equal(t, "treasure/record/7", string(TreasureKey(7)))
	require.Equal(t, "sponsor/queue/3", string(SponsorQueueKey(3)))
	require.Equal(t, "ticket/2/index", string(TicketIndexKey(2)))
	require.Equal(t, "params/system/pauses", string(ParamStoreKey(params.ParamsKeyPauses)))
	require.Equal(t, "quota/unlock/aa00000000000000000000000000000000000000", string(QuotaKey("unlock", addr)))
	require.Equal(t, "token/balance/EOS/aa00000000000000000000000000000000000000", string(TokenBalanceKey(addr, "EOS")))
}

func TestRoles(t *testing.T) {
	mgr := newTestManager(t)
	a, b := []byte{0x02}, []byte{0x01}

	require.NoError(t, mgr.SetRole(common.RoleOperator, a))
	require.NoError(t, mgr.SetRole(common.RoleOperator, b))
	require.NoError(t, mgr.SetRole(common.RoleOperator, a))

	members, err := mgr.RoleMembers(common.RoleOperator)
	require.NoError(t, err)
	require.Equal(t, [][]byte{b, a}, members)
	require.True(t, mgr.HasRole(common.RoleOperator, a))
	require.False(t, mgr.HasRole(common.RoleOracle, a))

	require.NoError(t, mgr.RemoveRole(common.RoleOperator, a))
	require.False(t, mgr.HasRole(common.RoleOperator, a))
	require.Error(t, mgr.SetRole(" ", a))
}

func TestAccountsAndSequences(t *testing.T) {
	mgr := newTestManager(t)
	addr := [20]byte{0x01}

	exists, err := mgr.AccountExists(addr)
	require.NoError(t, err)
	require.False(t, exists)

	acc, err := mgr.OpenAccount(addr, 42)
	require.NoError(t, err)
	require.Equal(t, uint64(42), acc.CreatedAt)
	acc.Nonce = 3
	require.NoError(t, mgr.PutAccount(addr, acc))

	again, err := mgr.OpenAccount(addr, 99)
	require.NoError(t, err)
	require.Equal(t, uint64(3), again.Nonce)
	require.Equal(t, uint64(42), again.CreatedAt)

	for want := uint64(1); want <= 3; want++ {
		got, err := mgr.NextSequence(treasure.SeqTreasure)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	other, err := mgr.NextSequence(treasure.SeqAward)
	require.NoError(t, err)
	require.Equal(t, uint64(1), other)
}

func TestTokenStatsAndBalances(t *testing.T) {
	mgr := newTestManager(t)
	owner := [20]byte{0x05}
	stats := &token.Stats{Symbol: eos, Supply: big.NewInt(10), MaxSupply: big.NewInt(1000), Issuer: owner}
	require.NoError(t, mgr.TokenStatsPut(stats))

	loaded, ok, err := mgr.TokenStatsGet("EOS")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, eos, loaded.Symbol)
	require.Zero(t, loaded.MaxSupply.Cmp(big.NewInt(1000)))

	codes, err := mgr.TokenList()
	require.NoError(t, err)
	require.Equal(t, []string{"EOS"}, codes)

	require.NoError(t, mgr.TokenBalancePut(owner, "EOS", big.NewInt(77)))
	bal, ok, err := mgr.TokenBalanceGet(owner, "EOS")
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, bal.Cmp(big.NewInt(77)))

	require.NoError(t, mgr.TokenBalancePut(owner, "EOS", big.NewInt(0)))
	bal, ok, err = mgr.TokenBalanceGet(owner, "EOS")
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, bal.Sign())

	require.Error(t, mgr.TokenBalancePut(owner, "EOS", big.NewInt(-1)))
}

func TestSettingsRoundTrip(t *testing.T) {
	mgr := newTestManager(t)
	price := types.NewAsset(31_000, params.USDSymbol())
	require.NoError(t, mgr.SettingPut(&params.Setting{Key: params.KeyEosUSD, AssetValue: &price, UpdatedAt: 10}))
	require.NoError(t, mgr.SettingPut(&params.Setting{Key: params.KeyPartBonus, UintValue: 2}))

	got, ok, err := mgr.SettingGet(params.KeyEosUSD)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, got.AssetValue)
	require.Equal(t, "3.1000 USD", got.AssetValue.String())
	require.Equal(t, int64(10), got.UpdatedAt)

	bonus, ok, err := mgr.SettingGet(params.KeyPartBonus)
	require.NoError(t, err)
	require.True(t, ok)
	require.Nil(t, bonus.AssetValue)
	require.Equal(t, uint32(2), bonus.UintValue)

	keys, err := mgr.SettingKeys()
	require.NoError(t, err)
	require.Equal(t, []string{params.KeyEosUSD, params.KeyPartBonus}, keys)

	require.NoError(t, mgr.SettingDelete(params.KeyEosUSD))
	_, ok, err = mgr.SettingGet(params.KeyEosUSD)
	require.NoError(t, err)
	require.False(t, ok)
	keys, err = mgr.SettingKeys()
	require.NoError(t, err)
	require.Equal(t, []string{params.KeyPartBonus}, keys)

	require.NoError(t, mgr.ParamStoreSet(params.ParamsKeyPauses, []byte(`{"treasure":true}`)))
	raw, ok, err := mgr.ParamStoreGet(params.ParamsKeyPauses)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"treasure":true}`, string(raw))
}

func TestQuotaRoundTrip(t *testing.T) {
	mgr := newTestManager(t)
	addr := [20]byte{0x09}
	_, ok, err := mgr.QuotaGet(treasure.QuotaUnlock, addr)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, mgr.QuotaPut(treasure.QuotaUnlock, addr, common.QuotaNow{Count: 4, EpochID: 19}))
	q, ok, err := mgr.QuotaGet(treasure.QuotaUnlock, addr)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, common.QuotaNow{Count: 4, EpochID: 19}, q)
}
