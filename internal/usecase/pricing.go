package usecase

import (
	"fmt"

	"github.com/iamvkosarev/ai-mail-assistant/config"
)

const costBelowDisplay = "< $0.01"

// ModelPrice is the USD price of one token.
type ModelPrice struct {
	Input  float64
	Output float64
}

var defaultPricing = map[string]ModelPrice{
	"gpt-4o-mini":   {Input: 0.00000015, Output: 0.00000060},
	"gpt-4o":        {Input: 0.0000025, Output: 0.000010},
	"gpt-4-turbo":   {Input: 0.000010, Output: 0.000030},
	"gpt-3.5-turbo": {Input: 0.0000005, Output: 0.0000015},
}

type Pricing map[string]ModelPrice

// NewPricing merges overrides from the config into the built-in price table.
func NewPricing(overrides map[string]config.Price) Pricing {
	pricing := make(Pricing, len(defaultPricing)+len(overrides))
	for name, price := range defaultPricing {
		pricing[name] = price
	}
	for name, price := range overrides {
		pricing[name] = ModelPrice{Input: price.Input, Output: price.Output}
	}
	return pricing
}

// EstimateCost prices a call. Unknown models cost nothing.
func (p Pricing) EstimateCost(chatModel string, inputTokens, outputTokens int) string {
	price := p[chatModel]
	total := float64(inputTokens)*price.Input + float64(outputTokens)*price.Output
	cost := fmt.Sprintf("%.6f", total)
	if cost == "0.000000" {
		return costBelowDisplay
	}
	return "$" + cost
}
