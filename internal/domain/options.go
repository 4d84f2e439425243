package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OptionType distinguishes calls from puts. Call sorts before Put, which the
// chain ordering relies on.
type OptionType int

const (
	OptionTypeCall OptionType = iota
	OptionTypePut
)

func (t OptionType) String() string {
	switch t {
	case OptionTypeCall:
		return "call"
	case OptionTypePut:
		return "put"
	}
	return fmt.Sprintf("OptionType(%d)", int(t))
}

func (t OptionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// ParseOptionType accepts "call" or "put" in any case. Anything else is
// rejected rather than defaulted.
func ParseOptionType(s string) (OptionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call":
		return OptionTypeCall, true
	case "put":
		return OptionTypePut, true
	}
	return 0, false
}

// PremiumBasis names the quoted field used as the representative premium for
// a contract.
type PremiumBasis int

const (
	PremiumBasisMid PremiumBasis = iota
	PremiumBasisBid
	PremiumBasisAsk
	PremiumBasisLast
)

func (b PremiumBasis) String() string {
	switch b {
	case PremiumBasisMid:
		return "mid"
	case PremiumBasisBid:
		return "bid"
	case PremiumBasisAsk:
		return "ask"
	case PremiumBasisLast:
		return "last"
	}
	return fmt.Sprintf("PremiumBasis(%d)", int(b))
}

func (b PremiumBasis) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// ParsePremiumBasis reads a configured basis name, case-insensitively.
func ParsePremiumBasis(s string) (PremiumBasis, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mid":
		return PremiumBasisMid, true
	case "bid":
		return PremiumBasisBid, true
	case "ask":
		return PremiumBasisAsk, true
	case "last":
		return PremiumBasisLast, true
	}
	return 0, false
}

// Moneyness classifies a strike relative to the underlying price.
type Moneyness int

const (
	MoneynessITM Moneyness = iota
	MoneynessATM
	MoneynessOTM
)

func (m Moneyness) String() string {
	switch m {
	case MoneynessITM:
		return "ITM"
	case MoneynessATM:
		return "ATM"
	case MoneynessOTM:
		return "OTM"
	}
	return fmt.Sprintf("Moneyness(%d)", int(m))
}

func (m Moneyness) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// OptionGreeks bundles the sensitivity measures reported for a contract.
type OptionGreeks struct {
	Delta *decimal.Decimal `json:"delta,omitempty"`
	Gamma *decimal.Decimal `json:"gamma,omitempty"`
	Theta *decimal.Decimal `json:"theta,omitempty"`
	Vega  *decimal.Decimal `json:"vega,omitempty"`
}

// OptionContractQuote is a normalized option contract with pricing, greeks,
// and moneyness, ready for downstream wheel selection.
type OptionContractQuote struct {
	Symbol                     string           `json:"symbol"`
	Type                       OptionType       `json:"type"`
	Strike                     decimal.Decimal  `json:"strike"`
	Expiration                 time.Time        `json:"expiration"`
	Bid                        *decimal.Decimal `json:"bid,omitempty"`
	Ask                        *decimal.Decimal `json:"ask,omitempty"`
	Last                       *decimal.Decimal `json:"last,omitempty"`
	Mid                        *decimal.Decimal `json:"mid,omitempty"`
	SelectedPremium            *decimal.Decimal `json:"selected_premium,omitempty"`
	SelectedPremiumBasis       *PremiumBasis    `json:"selected_premium_basis,omitempty"`
	ImpliedVolatility          *decimal.Decimal `json:"implied_volatility,omitempty"`
	Greeks                     *OptionGreeks    `json:"greeks,omitempty"`
	Moneyness                  Moneyness        `json:"moneyness"`
	HasCompleteGreeks          bool             `json:"has_complete_greeks"`
	SelectionEligibilityReason string           `json:"selection_eligibility_reason,omitempty"`
}

// OptionChainSnapshot is the full normalized chain for a ticker at a point in
// time. Contracts are ordered by expiration, then strike, then Call before
// Put, then symbol; consumers depend on that order.
type OptionChainSnapshot struct {
	Ticker          string                `json:"ticker"`
	UnderlyingPrice decimal.Decimal       `json:"underlying_price"`
	AsOf            time.Time             `json:"as_of"`
	Contracts       []OptionContractQuote `json:"contracts"`
}
