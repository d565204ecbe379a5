package pumpfun

import (
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMint = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	testUser = "11111111111111111111111111111111"
)

func TestParseTradeEvent(t *testing.T) {
	data := []byte(`{
		"mint": "` + testMint + `",
		"solAmount": 1000000000,
		"tokenAmount": "34612903225806",
		"isBuy": true,
		"user": "` + testUser + `",
		"timestamp": 1718000000,
		"virtualSolReserves": 31000000000,
		"virtualTokenReserves": "1038387096774194",
		"realSolReserves": 1000000000,
		"realTokenReserves": 758487096774194
	}`)

	ev, err := ParseTradeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, solana.MustPublicKeyFromBase58(testMint), ev.Mint)
	assert.Equal(t, solana.SystemProgramID, ev.User)
	assert.True(t, ev.IsBuy)
	assert.Equal(t, uint64(1_000_000_000), ev.SolAmount)
	assert.Equal(t, uint64(34_612_903_225_806), ev.TokenAmount)
	assert.Equal(t, uint64(1_038_387_096_774_194), ev.VirtualTokenReserves)
	assert.Equal(t, uint64(758_487_096_774_194), ev.RealTokenReserves)
	assert.Equal(t, time.Unix(1718000000, 0).UTC(), ev.Timestamp)
}

func TestParseTradeEventSnakeCase(t *testing.T) {
	data := []byte(`{
		"mint": "` + testMint + `",
		"sol_amount": "5",
		"token_amount": 7,
		"is_buy": false,
		"user": "` + testUser + `",
		"virtual_sol_reserves": 1,
		"virtual_token_reserves": 2,
		"real_sol_reserves": 3,
		"real_token_reserves": 4
	}`)

	ev, err := ParseTradeEvent(data)
	require.NoError(t, err)
	assert.False(t, ev.IsBuy)
	assert.Equal(t, uint64(5), ev.SolAmount)
	assert.Equal(t, uint64(7), ev.TokenAmount)
	assert.Equal(t, uint64(1), ev.VirtualSolReserves)
	assert.Equal(t, uint64(2), ev.VirtualTokenReserves)
	assert.Equal(t, uint64(3), ev.RealSolReserves)
	assert.Equal(t, uint64(4), ev.RealTokenReserves)
}

func TestParseTradeEventErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{"mint":`},
		{"missing mint", `{"user":"` + testUser + `"}`},
		{"bad key", `{"mint":"not-a-key","user":"` + testUser + `"}`},
		{"missing amount", `{"mint":"` + testMint + `","user":"` + testUser + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTradeEvent([]byte(tt.data))
			assert.Error(t, err)
		})
	}

	malformed := []struct {
		name  string
		value string
	}{
		{"negative", `-5`},
		{"negative string", `"-5"`},
		{"non numeric string", `"abc"`},
		{"bool", `true`},
		{"null", `null`},
		{"object", `{}`},
		{"above u64", `"18446744073709551616"`},
		{"above u64 number", `18446744073709551616`},
		{"fraction", `1.9`},
		{"exponent", `1e9`},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			data := `{"mint":"` + testMint + `","user":"` + testUser + `","solAmount":` + tt.value + `}`
			_, err := ParseTradeEvent([]byte(data))
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestBondingCurveApplyEventRejectsMalformedReserves(t *testing.T) {
	curve := scenarioACurve()
	before := curve

	trade := []byte(`{
		"mint": "` + testMint + `",
		"user": "` + testUser + `",
		"solAmount": 1,
		"tokenAmount": 1,
		"virtualSolReserves": 30000000000,
		"virtualTokenReserves": "abc",
		"realSolReserves": 0,
		"realTokenReserves": 800000000
	}`)
	err := curve.ApplyEvent(EventTrade, trade)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, before, curve)
}

func TestBondingCurveApplyEvent(t *testing.T) {
	curve := scenarioACurve()

	trade := []byte(`{
		"mint": "` + testMint + `",
		"user": "` + testUser + `",
		"solAmount": 30030031,
		"tokenAmount": 1000000,
		"isBuy": true,
		"virtualSolReserves": 30030030031,
		"virtualTokenReserves": 999000000,
		"realSolReserves": 30030031,
		"realTokenReserves": 799000000
	}`)
	require.NoError(t, curve.ApplyEvent(EventTrade, trade))
	assert.Equal(t, uint64(30_030_030_031), curve.VirtualSolReserves)
	assert.Equal(t, uint64(999_000_000), curve.VirtualTokenReserves)
	assert.Equal(t, uint64(30_030_031), curve.RealSolReserves)
	assert.Equal(t, uint64(799_000_000), curve.RealTokenReserves)
	assert.False(t, curve.Complete)

	before := curve
	require.NoError(t, curve.ApplyEvent(EventCreate, []byte(`{}`)))
	assert.Equal(t, before, curve)

	complete := []byte(`{"user":"` + testUser + `","mint":"` + testMint + `","bondingCurve":"` + testUser + `","timestamp":1}`)
	require.NoError(t, curve.ApplyEvent(EventComplete, complete))
	assert.True(t, curve.Complete)

	_, err := curve.GetBuyPrice(1)
	assert.ErrorIs(t, err, ErrCurveComplete)

	assert.Error(t, curve.ApplyEvent("withdrawEvent", []byte(`{}`)))
	assert.Error(t, curve.ApplyEvent(EventTrade, []byte(`{}`)))
}

func TestGlobalAccountApplyEvent(t *testing.T) {
	g := pumpGlobal()

	data := []byte(`{
		"fee_recipient": "` + testMint + `",
		"initial_virtual_token_reserves": "1073000000000000",
		"initial_virtual_sol_reserves": "40000000000",
		"initial_real_token_reserves": "793100000000000",
		"token_total_supply": "1000000000000000",
		"fee_basis_points": 95
	}`)
	require.NoError(t, g.ApplyEvent(EventSetParams, data))
	assert.Equal(t, uint64(40_000_000_000), g.InitialVirtualSolReserves)
	assert.Equal(t, uint64(95), g.FeeBasisPoints)
	assert.Equal(t, solana.MustPublicKeyFromBase58(testMint), g.FeeRecipient)
	require.NoError(t, g.Validate())

	before := g
	require.NoError(t, g.ApplyEvent(EventTrade, []byte(`{}`)))
	assert.Equal(t, before, g)
}

func TestParseCreateEvent(t *testing.T) {
	data := []byte(`{
		"name": "Curve Cat",
		"symbol": "CCAT",
		"uri": "https://example.org/ccat.json",
		"mint": "` + testMint + `",
		"bondingCurve": "` + testUser + `",
		"user": "` + testUser + `"
	}`)

	ev, err := ParseCreateEvent(data)
	require.NoError(t, err)
	assert.Equal(t, "Curve Cat", ev.Name)
	assert.Equal(t, "CCAT", ev.Symbol)
	assert.Equal(t, "https://example.org/ccat.json", ev.URI)
	assert.Equal(t, solana.MustPublicKeyFromBase58(testMint), ev.Mint)
}
