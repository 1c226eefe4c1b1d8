package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"treasurechain/core/types"
	"treasurechain/crypto"
	"treasurechain/native/treasure"
)

func TestMemosRoundTripThroughDepositPrefixes(t *testing.T) {
	require.Equal(t, "Check Treasure No.7", checkMemo(7))
	require.Equal(t, "Unlock Treasure No.7-open sesame", unlockMemo(7, "open sesame"))
	require.True(t, strings.HasPrefix(activateMemo(3), treasure.MemoActivateAward))
}

func TestClientDecodesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/accounts/") {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"account not found","class":"not_found"}`))
			return
		}
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"module paused","class":"state_conflict"}`))
	}))
	defer srv.Close()

	api := newClient(srv.URL + "/")
	nonce, err := api.nonce(context.Background(), "tb1xyz")
	require.NoError(t, err)
	require.Zero(t, nonce)

	_, err = api.submit(context.Background(), &types.Transaction{Type: types.TxTypeOpenAccount})
	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusConflict, apiErr.Status)
	require.Equal(t, "state_conflict", apiErr.Class)
}

func TestSendSignsWithRemoteNonce(t *testing.T) {
	t.Setenv("TREASURE_TEST_PASS", "correct horse")
	key, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	keyPath := filepath.Join(t.TempDir(), "operator.json")
	require.NoError(t, crypto.WriteKeyFile(keyPath, key, "correct horse"))
	signer := key.PubKey().Address()

	var submitted types.Transaction
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/accounts/"+signer.String():
			_, _ = w.Write([]byte(`{"nonce":3}`))
		case r.Method == http.MethodPost && r.URL.Path == "/tx":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&submitted))
			_ = json.NewEncoder(w).Encode(types.Receipt{Height: 4, Type: submitted.Type.String()})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err = app.Run([]string{"treasurectl",
		"--rpc", srv.URL,
		"--key", keyPath,
		"--pass-env", "TREASURE_TEST_PASS",
		"send", "erasetreasure", `{"key": 9}`,
	})
	require.NoError(t, err)

	require.Equal(t, types.TxTypeEraseTreasure, submitted.Type)
	require.Equal(t, uint64(3), submitted.Nonce)
	require.JSONEq(t, `{"key":9}`, string(submitted.Data))
	from, err := submitted.From()
	require.NoError(t, err)
	require.Equal(t, signer.Raw(), from)
	require.Contains(t, out.String(), `"height": 4`)
}

func TestSendRejectsUnknownAction(t *testing.T) {
	app := newApp()
	err := app.Run([]string{"treasurectl", "send", "mint", "{}"})
	require.ErrorContains(t, err, "unknown action")
}
