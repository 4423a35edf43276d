package types

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testAddress 用给定前缀和字节生成合法 bech32 地址
func testAddress(t *testing.T, hrp string, fill byte) string {
	t.Helper()
	raw := make([]byte, 20)
	for i := range raw {
		raw[i] = fill
	}
	conv, err := bech32.ConvertBits(raw, 8, 5, true)
	require.NoError(t, err)
	addr, err := bech32.Encode(hrp, conv)
	require.NoError(t, err)
	return addr
}

func TestAddressValidator_Valid(t *testing.T) {
	v := NewAddressValidator("paloma")
	addr := testAddress(t, "paloma", 0x01)

	p, err := v.Validate(addr)
	require.NoError(t, err)
	assert.Equal(t, Principal(addr), p)
	assert.Equal(t, "paloma", v.Prefix())
}

func TestAddressValidator_Rejects(t *testing.T) {
	v := NewAddressValidator("paloma")
	good := testAddress(t, "paloma", 0x02)
	corrupted := good[:len(good)-1] + string("qpzry9x8gf2tvdw0s3jn54khce6mua7l"[(strings.IndexByte("qpzry9x8gf2tvdw0s3jn54khce6mua7l", good[len(good)-1])+1)%32])

	cases := map[string]string{
		"empty":        "",
		"uppercase":    strings.ToUpper(good),
		"wrong prefix": testAddress(t, "cosmos", 0x02),
		"bad checksum": corrupted,
		"garbage":      "not-an-address",
	}
	for name, addr := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Validate(addr)
			assert.ErrorIs(t, err, ErrInvalidPrincipal)
		})
	}
}

func TestAddressValidator_ValidateAll(t *testing.T) {
	v := NewAddressValidator("paloma")
	a, b := testAddress(t, "paloma", 0x03), testAddress(t, "paloma", 0x04)

	ps, err := v.ValidateAll([]string{a, b})
	require.NoError(t, err)
	assert.Equal(t, []Principal{Principal(a), Principal(b)}, ps)

	_, err = v.ValidateAll([]string{a, "bogus"})
	assert.ErrorIs(t, err, ErrInvalidPrincipal)
}

func TestParseEVMAddress(t *testing.T) {
	addr, err := ParseEVMAddress("0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Equal(t, byte(0x11), addr[0])

	for _, bad := range []string{"", "0x1234", "0xZZ11111111111111111111111111111111111111"} {
		_, err := ParseEVMAddress(bad)
		assert.ErrorIs(t, err, ErrInvalidPrincipal, bad)
	}
}

func TestAddressValidator_FromPubKey(t *testing.T) {
	v := NewAddressValidator("paloma")

	// 私钥 1 对应的压缩公钥，hash160 为 751e76e8...3bd6
	pub, err := hex.DecodeString("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	require.NoError(t, err)
	hash, err := hex.DecodeString("751e76e8199196d454941c45d1b3a323f1433bd6")
	require.NoError(t, err)
	conv, err := bech32.ConvertBits(hash, 8, 5, true)
	require.NoError(t, err)
	want, err := bech32.Encode("paloma", conv)
	require.NoError(t, err)

	p, err := v.FromPubKey(pub)
	require.NoError(t, err)
	assert.Equal(t, Principal(want), p)

	// 推导结果可通过同一校验器
	_, err = v.Validate(p.String())
	require.NoError(t, err)

	_, err = v.FromPubKey(pub[1:])
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPrincipal)
}
