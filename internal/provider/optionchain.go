package provider

import (
	"sort"
	"strings"
	"time"

	"wheelhouse/internal/domain"

	"github.com/shopspring/decimal"
)

// historicalOptionsResponse mirrors the HISTORICAL_OPTIONS payload.
type historicalOptionsResponse struct {
	Endpoint string              `json:"endpoint"`
	Message  string              `json:"message"`
	Data     []rawOptionContract `json:"data"`
}

// rawOptionContract is one unvalidated row from the upstream chain. All
// fields arrive as strings.
type rawOptionContract struct {
	ContractID        string `json:"contractID"`
	Type              string `json:"type"`
	Strike            string `json:"strike"`
	Expiration        string `json:"expiration"`
	Bid               string `json:"bid"`
	Ask               string `json:"ask"`
	Last              string `json:"last"`
	ImpliedVolatility string `json:"implied_volatility"`
	Delta             string `json:"delta"`
	Gamma             string `json:"gamma"`
	Theta             string `json:"theta"`
	Vega              string `json:"vega"`
}

const missingGreeksReason = "missing_greeks"

// normalizeOptionChain converts raw contract rows into a ranked, de-duplicated,
// classified snapshot. Rows with an unrecognized type, a non-positive or
// unparsable strike, or an unparsable expiration are dropped. Duplicate
// contract symbols (case-insensitive) keep the first occurrence only.
func normalizeOptionChain(
	ticker string,
	underlyingPrice decimal.Decimal,
	asOf time.Time,
	contracts []rawOptionContract,
	defaultBasis domain.PremiumBasis,
	atmTolerancePercent decimal.Decimal,
) *domain.OptionChainSnapshot {
	parsed := make([]domain.OptionContractQuote, 0, len(contracts))
	seen := make(map[string]struct{}, len(contracts))

	for _, c := range contracts {
		symbol := strings.TrimSpace(c.ContractID)
		if symbol == "" {
			continue
		}

		optType, ok := domain.ParseOptionType(c.Type)
		if !ok {
			continue
		}

		strike := parseDecimal(c.Strike)
		if strike == nil || !strike.IsPositive() {
			continue
		}

		expiration, ok := parseDate(c.Expiration)
		if !ok {
			continue
		}

		key := strings.ToLower(symbol)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		bid := parseDecimal(c.Bid)
		ask := parseDecimal(c.Ask)
		last := parseDecimal(c.Last)

		greeks := &domain.OptionGreeks{
			Delta: parseDecimal(c.Delta),
			Gamma: parseDecimal(c.Gamma),
			Theta: parseDecimal(c.Theta),
			Vega:  parseDecimal(c.Vega),
		}
		hasAnyGreeks := greeks.Delta != nil || greeks.Gamma != nil || greeks.Theta != nil || greeks.Vega != nil
		hasCompleteGreeks := greeks.Delta != nil && greeks.Gamma != nil && greeks.Theta != nil && greeks.Vega != nil
		if !hasAnyGreeks {
			greeks = nil
		}

		mid := computeMid(bid, ask)
		premium, basis := selectPremium(defaultBasis, bid, ask, last, mid)

		quote := domain.OptionContractQuote{
			Symbol:               symbol,
			Type:                 optType,
			Strike:               *strike,
			Expiration:           expiration,
			Bid:                  bid,
			Ask:                  ask,
			Last:                 last,
			Mid:                  mid,
			SelectedPremium:      premium,
			SelectedPremiumBasis: basis,
			ImpliedVolatility:    parseDecimal(c.ImpliedVolatility),
			Greeks:               greeks,
			Moneyness:            classifyMoneyness(optType, *strike, underlyingPrice, atmTolerancePercent),
			HasCompleteGreeks:    hasCompleteGreeks,
		}
		if !hasCompleteGreeks {
			quote.SelectionEligibilityReason = missingGreeksReason
		}

		parsed = append(parsed, quote)
	}

	sort.Slice(parsed, func(i, j int) bool {
		a, b := parsed[i], parsed[j]
		if !a.Expiration.Equal(b.Expiration) {
			return a.Expiration.Before(b.Expiration)
		}
		if cmp := a.Strike.Cmp(b.Strike); cmp != 0 {
			return cmp < 0
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return strings.ToLower(a.Symbol) < strings.ToLower(b.Symbol)
	})

	return &domain.OptionChainSnapshot{
		Ticker:          ticker,
		UnderlyingPrice: underlyingPrice,
		AsOf:            asOf,
		Contracts:       parsed,
	}
}

// computeMid returns (bid+ask)/2 only when both sides are present and
// strictly positive.
func computeMid(bid, ask *decimal.Decimal) *decimal.Decimal {
	if bid == nil || ask == nil || !bid.IsPositive() || !ask.IsPositive() {
		return nil
	}
	mid := bid.Add(*ask).Div(decimal.NewFromInt(2))
	return &mid
}

// selectPremium walks a ranked candidate list starting with the configured
// default basis and returns the first quoted value, recording which basis was
// actually used.
func selectPremium(defaultBasis domain.PremiumBasis, bid, ask, last, mid *decimal.Decimal) (*decimal.Decimal, *domain.PremiumBasis) {
	type candidate struct {
		basis domain.PremiumBasis
		value *decimal.Decimal
	}

	var ranked []candidate
	switch defaultBasis {
	case domain.PremiumBasisBid:
		ranked = []candidate{
			{domain.PremiumBasisBid, bid},
			{domain.PremiumBasisMid, mid},
			{domain.PremiumBasisLast, last},
			{domain.PremiumBasisAsk, ask},
		}
	case domain.PremiumBasisAsk:
		ranked = []candidate{
			{domain.PremiumBasisAsk, ask},
			{domain.PremiumBasisMid, mid},
			{domain.PremiumBasisLast, last},
			{domain.PremiumBasisBid, bid},
		}
	case domain.PremiumBasisLast:
		ranked = []candidate{
			{domain.PremiumBasisLast, last},
			{domain.PremiumBasisMid, mid},
			{domain.PremiumBasisBid, bid},
			{domain.PremiumBasisAsk, ask},
		}
	default:
		ranked = []candidate{
			{domain.PremiumBasisMid, mid},
			{domain.PremiumBasisLast, last},
			{domain.PremiumBasisBid, bid},
			{domain.PremiumBasisAsk, ask},
		}
	}

	for _, c := range ranked {
		if c.value != nil {
			basis := c.basis
			return c.value, &basis
		}
	}
	return nil, nil
}

// classifyMoneyness buckets a strike against the underlying price. A
// non-positive underlying degenerates to ATM. Strikes within
// underlying*(tolerance/100) of the underlying are ATM.
func classifyMoneyness(optType domain.OptionType, strike, underlyingPrice, atmTolerancePercent decimal.Decimal) domain.Moneyness {
	if !underlyingPrice.IsPositive() {
		return domain.MoneynessATM
	}

	tolerance := underlyingPrice.Mul(atmTolerancePercent.Div(decimal.NewFromInt(100)))
	if strike.Sub(underlyingPrice).Abs().Cmp(tolerance) <= 0 {
		return domain.MoneynessATM
	}

	if optType == domain.OptionTypeCall {
		if strike.LessThan(underlyingPrice) {
			return domain.MoneynessITM
		}
		return domain.MoneynessOTM
	}

	if strike.GreaterThan(underlyingPrice) {
		return domain.MoneynessITM
	}
	return domain.MoneynessOTM
}
