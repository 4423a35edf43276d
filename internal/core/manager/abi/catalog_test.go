package abi

import (
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCatalog_Selectors 规范签名与选择器
func TestCatalog_Selectors(t *testing.T) {
	want := map[string]struct {
		canonical string
		selector  string
		class     JobClass
	}{
		FnDeployERC20:               {"deploy_erc20(string,string,string,uint8,address)", "08a92ad7", JobClassCompass},
		FnSendToken:                 {"send_token(address,address,uint256,uint256)", "3feb6bf4", JobClassMain},
		FnUpdateCompass:             {"update_compass(address)", "6974af69", JobClassMain},
		FnUpdateRefundWallet:        {"update_refund_wallet(address)", "c98856aa", JobClassMain},
		FnUpdateGasFee:              {"update_gas_fee(uint256)", "6e9bc3f6", JobClassMain},
		FnUpdateServiceFeeCollector: {"update_service_fee_collector(address)", "30e59cbc", JobClassMain},
		FnUpdateServiceFee:          {"update_service_fee(uint256)", "c4ec2ff1", JobClassMain},
		FnSetPaloma:                 {"set_paloma()", "23fde8e2", JobClassMain},
	}

	sigs := Signatures()
	require.Len(t, sigs, len(want))
	for _, s := range sigs {
		w, ok := want[s.Name]
		require.True(t, ok, s.Name)
		sel := s.Selector()
		assert.Equal(t, w.canonical, s.Canonical())
		assert.Equal(t, w.selector, hex.EncodeToString(sel[:]), s.Name)
		assert.Equal(t, w.class, s.Class, s.Name)
	}
}

// TestCatalog_Lookup 查找与只读副本
func TestCatalog_Lookup(t *testing.T) {
	_, err := Lookup("nope")
	assert.ErrorIs(t, err, ErrUnknownFunction)
	assert.Panics(t, func() { MustLookup("nope") })

	sigs := Signatures()
	sigs[0].Name = "mutated"
	assert.Equal(t, FnDeployERC20, MustLookup(FnDeployERC20).Name)
}

// TestConformance_GoEthereum 与 go-ethereum 的 ABI 打包结果逐字节一致
func TestConformance_GoEthereum(t *testing.T) {
	parsed, err := ethabi.JSON(strings.NewReader(JSON()))
	require.NoError(t, err)

	for _, s := range Signatures() {
		method, ok := parsed.Methods[s.Name]
		require.True(t, ok, s.Name)
		sel := s.Selector()
		assert.Equal(t, sel[:], method.ID, s.Name)
	}

	maxUint := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	longString := strings.Repeat("Paloma-", 10)

	cases := []struct {
		fn      string
		ethArgs []interface{}
		ourArgs []interface{}
	}{
		{
			fn:      FnSendToken,
			ethArgs: []interface{}{addr(0x11), addr(0x22), big.NewInt(1000), big.NewInt(1)},
			ourArgs: []interface{}{addr(0x11), addr(0x22), big.NewInt(1000), big.NewInt(1)},
		},
		{
			fn:      FnDeployERC20,
			ethArgs: []interface{}{"upusd", longString, "", uint8(18), addr(0x33)},
			ourArgs: []interface{}{"upusd", longString, "", uint8(18), addr(0x33)},
		},
		{
			fn:      FnUpdateServiceFee,
			ethArgs: []interface{}{maxUint},
			ourArgs: []interface{}{maxUint},
		},
		{
			fn:      FnUpdateRefundWallet,
			ethArgs: []interface{}{addr(0xab)},
			ourArgs: []interface{}{addr(0xab)},
		},
		{
			fn: FnSetPaloma,
		},
	}
	for _, c := range cases {
		t.Run(c.fn, func(t *testing.T) {
			want, err := parsed.Pack(c.fn, c.ethArgs...)
			require.NoError(t, err)

			got, err := EncodeByName(c.fn, c.ourArgs...)
			require.NoError(t, err)
			assert.Equal(t, hex.EncodeToString(want), hex.EncodeToString(got))
		})
	}
}
