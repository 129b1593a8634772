package shipping

import (
	"fmt"
	"sort"

	"github.com/buy2brands/wholesale-api/pkg/types"
)

// Quote is the outcome of pricing an item count against a structure.
type Quote struct {
	Cost      types.Money         `json:"shipping_cost"`
	Rule      *types.ShippingRule `json:"rule,omitempty"`
	ItemCount int                 `json:"item_count"`
}

// SelectRule returns the first rule whose range contains count, falling back to
// the last rule when none does. Rules are expected in min_items order.
func SelectRule(rules types.ShippingRules, count int) (types.ShippingRule, bool) {
	for _, rule := range rules {
		if rule.Matches(count) {
			return rule, true
		}
	}
	if len(rules) == 0 {
		return types.ShippingRule{}, false
	}
	return rules[len(rules)-1], true
}

// Calculate prices count items against rules.
func Calculate(rules types.ShippingRules, count int) Quote {
	rule, ok := SelectRule(rules, count)
	if !ok {
		return Quote{ItemCount: count}
	}
	quote := Quote{Rule: &rule, ItemCount: count}
	if rule.IsFree {
		return quote
	}
	quote.Cost = rule.BaseCost
	if rule.CostPerAdditionalItem > 0 && count > rule.MinItems {
		quote.Cost += rule.CostPerAdditionalItem.Mul(count - rule.MinItems)
	}
	return quote
}

// NormalizeRules sorts rules by min_items and rejects overlapping ranges.
func NormalizeRules(rules types.ShippingRules) (types.ShippingRules, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("at least one shipping rule is required")
	}
	sorted := make(types.ShippingRules, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinItems < sorted[j].MinItems })

	for i, rule := range sorted {
		if rule.MinItems < 0 {
			return nil, fmt.Errorf("rule %d: min_items must not be negative", i+1)
		}
		if rule.MaxItems != nil && *rule.MaxItems < rule.MinItems {
			return nil, fmt.Errorf("rule %d: max_items (%d) is below min_items (%d)", i+1, *rule.MaxItems, rule.MinItems)
		}
		if rule.BaseCost < 0 || rule.CostPerAdditionalItem < 0 {
			return nil, fmt.Errorf("rule %d: costs must not be negative", i+1)
		}
		if i == len(sorted)-1 {
			break
		}
		next := sorted[i+1]
		if rule.MaxItems == nil || *rule.MaxItems >= next.MinItems {
			return nil, fmt.Errorf("rule ranges overlap: rule %d must end before rule %d starts at %d items", i+1, i+2, next.MinItems)
		}
	}
	return sorted, nil
}
