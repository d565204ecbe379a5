// =============================
// File: internal/dex/pumpfun/events.go
// =============================
package pumpfun

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/tidwall/gjson"
)

// Event names emitted by the program.
const (
	EventCreate    = "createEvent"
	EventTrade     = "tradeEvent"
	EventComplete  = "completeEvent"
	EventSetParams = "setParamsEvent"
)

// CreateEvent is emitted when a new curve is launched.
type CreateEvent struct {
	Name         string
	Symbol       string
	URI          string
	Mint         solana.PublicKey
	BondingCurve solana.PublicKey
	User         solana.PublicKey
}

// TradeEvent is emitted after every buy or sell and carries the post-trade reserves.
type TradeEvent struct {
	Mint                 solana.PublicKey
	SolAmount            uint64
	TokenAmount          uint64
	IsBuy                bool
	User                 solana.PublicKey
	Timestamp            time.Time
	VirtualSolReserves   uint64
	VirtualTokenReserves uint64
	RealSolReserves      uint64
	RealTokenReserves    uint64
}

// CompleteEvent is emitted when a curve runs out of real tokens and migrates.
type CompleteEvent struct {
	User         solana.PublicKey
	Mint         solana.PublicKey
	BondingCurve solana.PublicKey
	Timestamp    time.Time
}

// SetParamsEvent is emitted when the authority changes the curve family parameters.
type SetParamsEvent struct {
	FeeRecipient                solana.PublicKey
	InitialVirtualTokenReserves uint64
	InitialVirtualSolReserves   uint64
	InitialRealTokenReserves    uint64
	TokenTotalSupply            uint64
	FeeBasisPoints              uint64
}

// eventField looks a field up by its camelCase name, falling back to snake_case
// as produced by some indexers.
func eventField(data []byte, camel, snake string) gjson.Result {
	if r := gjson.GetBytes(data, camel); r.Exists() {
		return r
	}
	return gjson.GetBytes(data, snake)
}

func eventKey(data []byte, camel, snake string) (solana.PublicKey, error) {
	r := eventField(data, camel, snake)
	if !r.Exists() {
		return solana.PublicKey{}, fmt.Errorf("missing field %s", camel)
	}
	key, err := solana.PublicKeyFromBase58(r.String())
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s: %w", camel, err)
	}
	return key, nil
}

func eventUint(data []byte, camel, snake string) (uint64, error) {
	r := eventField(data, camel, snake)
	if !r.Exists() {
		return 0, fmt.Errorf("missing field %s", camel)
	}
	// u64 fields arrive either as JSON numbers or as decimal strings.
	var raw string
	switch r.Type {
	case gjson.Number:
		raw = r.Raw
	case gjson.String:
		raw = r.Str
	default:
		return 0, fmt.Errorf("%w: %s is not a number: %s", ErrInvalidAmount, camel, r.Raw)
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a u64", ErrInvalidAmount, camel, raw)
	}
	return v, nil
}

// ParseTradeEvent decodes a JSON trade event.
func ParseTradeEvent(data []byte) (TradeEvent, error) {
	if !gjson.ValidBytes(data) {
		return TradeEvent{}, fmt.Errorf("invalid trade event JSON")
	}

	var (
		ev  TradeEvent
		err error
	)
	if ev.Mint, err = eventKey(data, "mint", "mint"); err != nil {
		return TradeEvent{}, err
	}
	if ev.User, err = eventKey(data, "user", "user"); err != nil {
		return TradeEvent{}, err
	}
	fields := []struct {
		camel, snake string
		dst          *uint64
	}{
		{"solAmount", "sol_amount", &ev.SolAmount},
		{"tokenAmount", "token_amount", &ev.TokenAmount},
		{"virtualSolReserves", "virtual_sol_reserves", &ev.VirtualSolReserves},
		{"virtualTokenReserves", "virtual_token_reserves", &ev.VirtualTokenReserves},
		{"realSolReserves", "real_sol_reserves", &ev.RealSolReserves},
		{"realTokenReserves", "real_token_reserves", &ev.RealTokenReserves},
	}
	for _, f := range fields {
		if *f.dst, err = eventUint(data, f.camel, f.snake); err != nil {
			return TradeEvent{}, err
		}
	}
	ev.IsBuy = eventField(data, "isBuy", "is_buy").Bool()
	ev.Timestamp = time.Unix(eventField(data, "timestamp", "timestamp").Int(), 0).UTC()

	return ev, nil
}

// ParseCompleteEvent decodes a JSON complete event.
func ParseCompleteEvent(data []byte) (CompleteEvent, error) {
	if !gjson.ValidBytes(data) {
		return CompleteEvent{}, fmt.Errorf("invalid complete event JSON")
	}

	var (
		ev  CompleteEvent
		err error
	)
	if ev.User, err = eventKey(data, "user", "user"); err != nil {
		return CompleteEvent{}, err
	}
	if ev.Mint, err = eventKey(data, "mint", "mint"); err != nil {
		return CompleteEvent{}, err
	}
	if ev.BondingCurve, err = eventKey(data, "bondingCurve", "bonding_curve"); err != nil {
		return CompleteEvent{}, err
	}
	ev.Timestamp = time.Unix(eventField(data, "timestamp", "timestamp").Int(), 0).UTC()
	return ev, nil
}

// ParseCreateEvent decodes a JSON create event.
func ParseCreateEvent(data []byte) (CreateEvent, error) {
	if !gjson.ValidBytes(data) {
		return CreateEvent{}, fmt.Errorf("invalid create event JSON")
	}

	ev := CreateEvent{
		Name:   gjson.GetBytes(data, "name").String(),
		Symbol: gjson.GetBytes(data, "symbol").String(),
		URI:    gjson.GetBytes(data, "uri").String(),
	}
	var err error
	if ev.Mint, err = eventKey(data, "mint", "mint"); err != nil {
		return CreateEvent{}, err
	}
	if ev.BondingCurve, err = eventKey(data, "bondingCurve", "bonding_curve"); err != nil {
		return CreateEvent{}, err
	}
	if ev.User, err = eventKey(data, "user", "user"); err != nil {
		return CreateEvent{}, err
	}
	return ev, nil
}

// ParseSetParamsEvent decodes a JSON set-params event.
func ParseSetParamsEvent(data []byte) (SetParamsEvent, error) {
	if !gjson.ValidBytes(data) {
		return SetParamsEvent{}, fmt.Errorf("invalid set params event JSON")
	}

	var (
		ev  SetParamsEvent
		err error
	)
	if ev.FeeRecipient, err = eventKey(data, "feeRecipient", "fee_recipient"); err != nil {
		return SetParamsEvent{}, err
	}
	fields := []struct {
		camel, snake string
		dst          *uint64
	}{
		{"initialVirtualTokenReserves", "initial_virtual_token_reserves", &ev.InitialVirtualTokenReserves},
		{"initialVirtualSolReserves", "initial_virtual_sol_reserves", &ev.InitialVirtualSolReserves},
		{"initialRealTokenReserves", "initial_real_token_reserves", &ev.InitialRealTokenReserves},
		{"tokenTotalSupply", "token_total_supply", &ev.TokenTotalSupply},
		{"feeBasisPoints", "fee_basis_points", &ev.FeeBasisPoints},
	}
	for _, f := range fields {
		if *f.dst, err = eventUint(data, f.camel, f.snake); err != nil {
			return SetParamsEvent{}, err
		}
	}
	return ev, nil
}

// ApplyEvent decodes a named program event and folds it into the curve snapshot.
// Events that do not change curve reserves are ignored.
func (bc *BondingCurve) ApplyEvent(name string, data []byte) error {
	switch name {
	case EventTrade:
		ev, err := ParseTradeEvent(data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
		bc.ApplyTradeEvent(ev)
	case EventComplete:
		ev, err := ParseCompleteEvent(data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
		bc.ApplyCompleteEvent(ev)
	case EventCreate, EventSetParams:
	default:
		return fmt.Errorf("unhandled event type: %s", name)
	}
	return nil
}

// ApplyEvent folds a set-params event into the global parameters; other events are ignored.
func (g *GlobalAccount) ApplyEvent(name string, data []byte) error {
	if name != EventSetParams {
		return nil
	}
	ev, err := ParseSetParamsEvent(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	g.ApplySetParams(ev)
	return nil
}
