package checkout

import "github.com/shopspring/decimal"

// Word-limit surcharges for publisher-written articles.
var wordLimitPrices = map[int]int64{
	650: 15,
	750: 20,
	850: 25,
}

// WordLimitPrice returns the publisher surcharge for a word count. The
// client variant never carries a surcharge, and unknown counts price at zero
// (step-1 validation rejects them before they can reach a total).
func WordLimitPrice(option string, wordCount int) decimal.Decimal {
	if option != ContentPublisher {
		return decimal.Zero
	}
	price, ok := wordLimitPrices[wordCount]
	if !ok {
		return decimal.Zero
	}
	return decimal.NewFromInt(price)
}

// CartTotal sums the adjusted line prices plus the word-limit surcharge.
// A pure sum: stable under reordering, and an unset price contributes zero.
func CartTotal(items []CartLineItem, option string, wordCount int) decimal.Decimal {
	total := WordLimitPrice(option, wordCount)
	for _, item := range items {
		total = total.Add(item.AdjustedPrice)
	}
	return total
}
