package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"treasurechain/core/types"
	"treasurechain/crypto"
	"treasurechain/integrations/scoreboard"
	"treasurechain/native/common"
	"treasurechain/native/params"
	"treasurechain/native/token"
	"treasurechain/native/treasure"
)

var eos = types.NewSymbol("EOS", 4)

type fakeBackend struct {
	treasures map[uint64]*treasure.Treasure
	applyErr  error
	applied   []*types.Transaction
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{treasures: map[uint64]*treasure.Treasure{
		1: {
			Key:              1,
			Owner:            [20]byte{0x01},
			Title:            "Old oak",
			Secret:           "acorn",
			TotalTurnover:    types.ZeroAsset(eos),
			PreChestTransfer: types.NewAsset(7246, eos),
			Award: &treasure.LinkedAward{
				QueueKey: 3,
				ValueX2:  types.NewAsset(200, eos),
				Fee:      types.NewAsset(20, eos),
			},
		},
	}}
}

func (f *fakeBackend) Apply(tx *types.Transaction) (*types.Receipt, error) {
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	f.applied = append(f.applied, tx)
	return &types.Receipt{Height: uint64(len(f.applied)), Type: tx.Type.String()}, nil
}

func (f *fakeBackend) Treasure(key uint64) (*treasure.Treasure, error) {
	t, ok := f.treasures[key]
	if !ok {
		return nil, treasure.ErrTreasureNotFound
	}
	return t, nil
}

func (f *fakeBackend) Treasures() ([]*treasure.Treasure, error) {
	return []*treasure.Treasure{f.treasures[1]}, nil
}

func (f *fakeBackend) Expired(int64) ([]uint64, error) { return []uint64{1}, nil }

func (f *fakeBackend) Queue(uint64) ([]*treasure.SponsorAward, error) { return nil, nil }

func (f *fakeBackend) Award(uint64) (*treasure.SponsorAward, error) {
	return nil, treasure.ErrAwardNotFound
}

func (f *fakeBackend) Tickets(kind treasure.TicketKind) ([]*treasure.Ticket, error) {
	return []*treasure.Ticket{{Key: 1, Kind: kind, TreasureKey: 1, Paid: types.NewAsset(7246, eos)}}, nil
}

func (f *fakeBackend) Results() ([]*treasure.Result, error) { return nil, nil }

func (f *fakeBackend) Crew([20]byte) (*treasure.Crew, error) { return nil, treasure.ErrCrewNotFound }

func (f *fakeBackend) Prices() (types.Asset, types.Asset, error) {
	return types.NewAsset(7246, eos), types.NewAsset(7246, eos), nil
}

func (f *fakeBackend) Balance(owner [20]byte, code string) (types.Asset, error) {
	if code != "EOS" {
		return types.Asset{}, token.ErrTokenNotFound
	}
	return types.NewAsset(10000, eos), nil
}

func (f *fakeBackend) TokenStats(string) (*token.Stats, error) { return nil, token.ErrTokenNotFound }

func (f *fakeBackend) Param(key string) (params.Setting, bool, error) {
	if key == params.KeySponsorOdds {
		return params.Setting{Key: key, UintValue: 100}, true, nil
	}
	return params.Setting{}, false, nil
}

func (f *fakeBackend) Params() ([]params.Setting, error) { return nil, nil }

func (f *fakeBackend) Account([20]byte) (*types.Account, error) {
	return &types.Account{Nonce: 4}, nil
}

func (f *fakeBackend) Height() (uint64, error) { return 9, nil }

type fakeLeaderboard struct{ limit int }

func (f *fakeLeaderboard) Leaders(_ context.Context, limit int) ([]scoreboard.Leader, error) {
	f.limit = limit
	return []scoreboard.Leader{{Finder: "tb1x", Solved: 2, PayoutUnits: 30000}}, nil
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStatusForTaxonomy(t *testing.T) {
	cases := map[error]int{
		common.ErrAuthorization:   http.StatusForbidden,
		common.ErrValidation:      http.StatusBadRequest,
		common.ErrNotFound:        http.StatusNotFound,
		common.ErrConservation:    http.StatusUnprocessableEntity,
		common.ErrPaymentMismatch: http.StatusPaymentRequired,
		common.ErrModulePaused:    http.StatusConflict,
		errors.New("disk on fire"): http.StatusInternalServerError,
	}
	for err, want := range cases {
		require.Equal(t, want, statusFor(fmt.Errorf("wrapped: %w", err)), err.Error())
	}
}

func TestTreasureRoutes(t *testing.T) {
	h := NewServer(newFakeBackend(), RateLimit{}, nil).Handler()

	rec := do(t, h, http.MethodGet, "/treasures/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "acorn")
	var view treasureView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, crypto.FormatAddress([20]byte{0x01}), view.Owner)
	require.Equal(t, "0.7246 EOS", view.PreChestTransfer.String())
	require.NotNil(t, view.Award)
	require.Equal(t, uint64(3), view.Award.QueueKey)

	rec = do(t, h, http.MethodGet, "/treasures/2", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), `"class":"not_found"`)

	rec = do(t, h, http.MethodGet, "/treasures/abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/treasures", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/treasures/expired", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"keys":[1]}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/tickets/check", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"kind":"check"`)

	rec = do(t, h, http.MethodGet, "/tickets/other", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLedgerAndParamRoutes(t *testing.T) {
	h := NewServer(newFakeBackend(), RateLimit{}, nil).Handler()
	owner := crypto.FormatAddress([20]byte{0x05})

	rec := do(t, h, http.MethodGet, "/balances/"+owner+"/eos", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"1.0000 EOS"`)

	rec = do(t, h, http.MethodGet, "/balances/nope/EOS", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/stats/XYZ", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/params/"+params.KeySponsorOdds, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"uintValue":100`)

	rec = do(t, h, http.MethodGet, "/params/unknown", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/prices", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"check":"0.7246 EOS"`)

	rec = do(t, h, http.MethodGet, "/accounts/"+owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"nonce":4`)
}

func TestSubmitTransaction(t *testing.T) {
	backend := newFakeBackend()
	h := NewServer(backend, RateLimit{}, nil).Handler()

	key, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	tx, err := types.NewTransaction(types.TxTypeEraseTreasure, 0, types.KeyPayload{Key: 1})
	require.NoError(t, err)
	require.NoError(t, tx.Sign(key.PrivateKey))
	body, err := json.Marshal(tx)
	require.NoError(t, err)

	rec := do(t, h, http.MethodPost, "/tx", string(body))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, backend.applied, 1)
	from, err := backend.applied[0].From()
	require.NoError(t, err)
	require.Equal(t, key.PubKey().Address().Raw(), from)

	rec = do(t, h, http.MethodPost, "/tx", "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	backend.applyErr = fmt.Errorf("%w: missing signature", common.ErrAuthorization)
	rec = do(t, h, http.MethodPost, "/tx", string(body))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), `"class":"authorization"`)

	backend.applyErr = errors.New("boom")
	rec = do(t, h, http.MethodPost, "/tx", string(body))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "boom")
}

func TestRateLimitPerClient(t *testing.T) {
	h := NewServer(newFakeBackend(), RateLimit{RequestsPerSecond: 0.001, Burst: 1}, nil).Handler()

	first := httptest.NewRequest(http.MethodGet, "/height", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, first)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	other := httptest.NewRequest(http.MethodGet, "/height", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	require.Equal(t, http.StatusOK, rec.Code)

	// Health and metrics bypass the limiter.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLeaderboardRoute(t *testing.T) {
	srv := NewServer(newFakeBackend(), RateLimit{}, nil)
	rec := do(t, srv.Handler(), http.MethodGet, "/leaderboard", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	lb := &fakeLeaderboard{}
	srv.SetLeaderboard(lb)
	h := srv.Handler()
	rec = do(t, h, http.MethodGet, "/leaderboard?limit=500", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, maxLeaders, lb.limit)
	require.Contains(t, rec.Body.String(), `"solved":2`)

	rec = do(t, h, http.MethodGet, "/leaderboard?limit=-1", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
}
