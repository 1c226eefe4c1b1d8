package crypto

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddressRoundTrip(t *testing.T) {
	var raw [20]byte
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	encoded := FormatAddress(raw)
	require.True(t, strings.HasPrefix(encoded, "tb1"))

	parsed, err := ParseAccount(encoded)
	require.NoError(t, err)
	require.Equal(t, raw, parsed)

	parsedHex, err := ParseAccount("0x0102030405060708090a0b0c0d0e0f1011121314")
	require.NoError(t, err)
	require.Equal(t, raw, parsedHex)
}

func TestParseAccountRejectsForeignPrefix(t *testing.T) {
	foreign := MustNewAddress("cosmos", make([]byte, 20)).String()
	_, err := ParseAccount(foreign)
	require.Error(t, err)

	_, err = ParseAccount("0x1234")
	require.Error(t, err)
}

func TestKeyFileRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "keys", "operator.json")
	require.NoError(t, WriteKeyFile(path, key, "secret"))

	loaded, err := ReadKeyFile(path, "secret")
	require.NoError(t, err)
	require.Equal(t, key.PubKey().Address().String(), loaded.PubKey().Address().String())

	_, err = ReadKeyFile(path, "wrong")
	require.Error(t, err)
}
