package abi

import (
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/purchaser/pkg/types"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func addr(b byte) common.Address {
	var a common.Address
	for i := range a {
		a[i] = b
	}
	return a
}

// TestEncode_SendTokenGolden send_token 黄金向量
func TestEncode_SendTokenGolden(t *testing.T) {
	payload, err := EncodeByName(FnSendToken, addr(0x11), addr(0x22), uint64(1000), uint64(1))
	require.NoError(t, err)

	want := "3feb6bf4" +
		"0000000000000000000000001111111111111111111111111111111111111111" +
		"0000000000000000000000002222222222222222222222222222222222222222" +
		"00000000000000000000000000000000000000000000000000000000000003e8" +
		"0000000000000000000000000000000000000000000000000000000000000001"
	assert.Equal(t, want, hex.EncodeToString(payload))
	assert.Len(t, payload, 4+4*32)
}

// TestEncode_DeployERC20Golden 三个动态参数 + 两个静态参数
func TestEncode_DeployERC20Golden(t *testing.T) {
	payload, err := EncodeByName(FnDeployERC20, "upusd", "Paloma USD", "PUSD", uint8(6), addr(0x33))
	require.NoError(t, err)

	want := "08a92ad7" +
		"00000000000000000000000000000000000000000000000000000000000000a0" +
		"00000000000000000000000000000000000000000000000000000000000000e0" +
		"0000000000000000000000000000000000000000000000000000000000000120" +
		"0000000000000000000000000000000000000000000000000000000000000006" +
		"0000000000000000000000003333333333333333333333333333333333333333" +
		"0000000000000000000000000000000000000000000000000000000000000005" +
		"7570757364000000000000000000000000000000000000000000000000000000" +
		"000000000000000000000000000000000000000000000000000000000000000a" +
		"50616c6f6d612055534400000000000000000000000000000000000000000000" +
		"0000000000000000000000000000000000000000000000000000000000000004" +
		"5055534400000000000000000000000000000000000000000000000000000000"
	assert.Equal(t, want, hex.EncodeToString(payload))
}

// TestEncode_SingleArgument 单参数函数
func TestEncode_SingleArgument(t *testing.T) {
	payload, err := EncodeByName(FnUpdateCompass, addr(0x44))
	require.NoError(t, err)
	assert.Equal(t, "6974af690000000000000000000000004444444444444444444444444444444444444444", hex.EncodeToString(payload))

	max := new(uint256.Int).SetAllOne()
	payload, err = EncodeByName(FnUpdateGasFee, max)
	require.NoError(t, err)
	assert.Equal(t, "6e9bc3f6"+strings.Repeat("ff", 32), hex.EncodeToString(payload))

	payload, err = EncodeByName(FnSetPaloma)
	require.NoError(t, err)
	assert.Equal(t, mustHex(t, "23fde8e2"), payload)
}

// TestEncode_StringTail 35字节字符串占用长度字 + 两个数据字
func TestEncode_StringTail(t *testing.T) {
	sig := NewSignature("set_label", JobClassMain, Param{"s", String()})
	s := strings.Repeat("a", 35)

	payload, err := Encode(sig, s)
	require.NoError(t, err)
	require.Len(t, payload, 4+32+96)

	tail := payload[4+32:]
	assert.Equal(t, byte(35), tail[31])
	assert.Equal(t, []byte(s), tail[32:67])
	assert.Equal(t, make([]byte, 29), tail[67:])

	// 空字符串只有长度字
	payload, err = Encode(sig, "")
	require.NoError(t, err)
	assert.Len(t, payload, 4+32+32)
}

// TestEncode_ArityMismatch 参数个数不符
func TestEncode_ArityMismatch(t *testing.T) {
	_, err := EncodeByName(FnSendToken, addr(0x11), addr(0x22), uint64(1))
	assert.ErrorIs(t, err, types.ErrArityMismatch)

	_, err = EncodeByName(FnSetPaloma, uint64(1))
	assert.ErrorIs(t, err, types.ErrArityMismatch)
}

// TestEncode_TypeMismatch 类型不兼容
func TestEncode_TypeMismatch(t *testing.T) {
	cases := []struct {
		name string
		fn   string
		args []interface{}
	}{
		{"string for address", FnUpdateCompass, []interface{}{"0x4444444444444444444444444444444444444444"}},
		{"address for uint", FnUpdateGasFee, []interface{}{addr(0x01)}},
		{"int for string", FnDeployERC20, []interface{}{1, "n", "s", uint8(6), addr(0x33)}},
		{"nil big.Int", FnUpdateServiceFee, []interface{}{(*big.Int)(nil)}},
		{"invalid utf-8", FnDeployERC20, []interface{}{"\xff\xfe", "n", "s", uint8(6), addr(0x33)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := EncodeByName(c.fn, c.args...)
			assert.ErrorIs(t, err, types.ErrTypeMismatch)
		})
	}
}

// TestEncode_ValueOutOfRange 位宽越界
func TestEncode_ValueOutOfRange(t *testing.T) {
	_, err := EncodeByName(FnDeployERC20, "d", "n", "s", 256, addr(0x33))
	assert.ErrorIs(t, err, types.ErrValueOutOfRange)

	_, err = EncodeByName(FnDeployERC20, "d", "n", "s", 255, addr(0x33))
	assert.NoError(t, err)

	_, err = EncodeByName(FnUpdateGasFee, big.NewInt(-1))
	assert.ErrorIs(t, err, types.ErrValueOutOfRange)

	_, err = EncodeByName(FnUpdateGasFee, new(big.Int).Lsh(big.NewInt(1), 256))
	assert.ErrorIs(t, err, types.ErrValueOutOfRange)

	_, err = EncodeByName(FnUpdateGasFee, -5)
	assert.ErrorIs(t, err, types.ErrValueOutOfRange)
}

// TestEncode_NumericInputsAgree 各种整数表示编码结果一致
func TestEncode_NumericInputsAgree(t *testing.T) {
	want, err := EncodeByName(FnUpdateServiceFee, uint64(123456))
	require.NoError(t, err)

	inputs := []interface{}{
		uint256.NewInt(123456),
		*uint256.NewInt(123456),
		types.NewUint(123456),
		big.NewInt(123456),
		123456,
		int64(123456),
		uint(123456),
	}
	for _, in := range inputs {
		got, err := EncodeByName(FnUpdateServiceFee, in)
		require.NoError(t, err)
		assert.Equal(t, want, got, "%T", in)
	}
}

// TestEncode_UnknownFunction 目录外函数
func TestEncode_UnknownFunction(t *testing.T) {
	_, err := EncodeByName("transfer", addr(0x01), uint64(1))
	assert.ErrorIs(t, err, ErrUnknownFunction)
}

// TestParseArgs 文本参数转换
func TestParseArgs(t *testing.T) {
	sig := MustLookup(FnSendToken)
	values, err := ParseArgs(sig, []string{
		"0x1111111111111111111111111111111111111111",
		"0x2222222222222222222222222222222222222222",
		"1000",
		"1",
	})
	require.NoError(t, err)

	payload, err := Encode(sig, values...)
	require.NoError(t, err)
	assert.Equal(t, "3feb6bf4", hex.EncodeToString(payload[:4]))

	_, err = ParseArgs(sig, []string{"0x11", "0x22", "1", "1"})
	assert.ErrorIs(t, err, types.ErrInvalidPrincipal)

	_, err = ParseArgs(MustLookup(FnUpdateGasFee), []string{"-1"})
	assert.ErrorIs(t, err, types.ErrValueOutOfRange)

	_, err = ParseArgs(sig, []string{"0x11"})
	assert.ErrorIs(t, err, types.ErrArityMismatch)
}
