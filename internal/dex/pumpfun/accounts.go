// =============================
// File: internal/dex/pumpfun/accounts.go
// =============================
package pumpfun

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// Минимальные длины данных аккаунтов (дискриминатор + поля).
const (
	GlobalAccountSize = 8 + 1 + 32 + 32 + 8*5
	BondingCurveSize  = 8 + 8*5 + 1
)

var (
	// GlobalAccountDiscriminator is the Anchor discriminator of the Global account.
	GlobalAccountDiscriminator = accountDiscriminator("Global")
	// BondingCurveDiscriminator is the Anchor discriminator of the BondingCurve account.
	BondingCurveDiscriminator = accountDiscriminator("BondingCurve")
)

func accountDiscriminator(name string) [8]byte {
	var d [8]byte
	sum := sha256.Sum256([]byte("account:" + name))
	copy(d[:], sum[:8])
	return d
}

// DecodeGlobalAccount parses raw Global account data.
// Trailing bytes added by newer program versions are ignored.
func DecodeGlobalAccount(data []byte) (*GlobalAccount, error) {
	if len(data) < GlobalAccountSize {
		return nil, fmt.Errorf("global account data too short: %d bytes", len(data))
	}
	if !bytes.Equal(data[:8], GlobalAccountDiscriminator[:]) {
		return nil, fmt.Errorf("unexpected global account discriminator %x", data[:8])
	}

	account := &GlobalAccount{}
	if err := bin.NewBorshDecoder(data).Decode(account); err != nil {
		return nil, fmt.Errorf("failed to decode global account: %w", err)
	}
	return account, nil
}

// DecodeBondingCurve parses raw BondingCurve account data.
func DecodeBondingCurve(data []byte) (*BondingCurve, error) {
	if len(data) < BondingCurveSize {
		return nil, fmt.Errorf("invalid bonding curve data: insufficient length %d", len(data))
	}
	if !bytes.Equal(data[:8], BondingCurveDiscriminator[:]) {
		return nil, fmt.Errorf("unexpected bonding curve discriminator %x", data[:8])
	}

	curve := &BondingCurve{}
	if err := bin.NewBorshDecoder(data).Decode(curve); err != nil {
		return nil, fmt.Errorf("failed to decode bonding curve: %w", err)
	}
	return curve, nil
}
