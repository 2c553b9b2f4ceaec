package normalisers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
)

// Marketplace feeds encode price in micro-units: the stored integer is
// the real TWD price multiplied by MicroUnitScale. Values above
// MicroUnitThreshold are assumed micro-encoded. This is a documented
// magnitude heuristic, not a guaranteed rule - a legitimately expensive
// item above the threshold would be misclassified.
const (
	MicroUnitThreshold = 10000
	MicroUnitScale     = 100000
)

// unavailableTokens mark a price as absent. An unavailable price resolves
// to nil, never to zero.
var unavailableTokens = []string{
	"電洽", "洽詢", "售完", "完售", "暫無",
	"call for price", "sold out",
}

var (
	numberPattern    = regexp.MustCompile(`\d+\.?\d*`)
	packWeightRegexp = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(KG|公斤)`)
	currencyCleaner  = strings.NewReplacer("NT$", "", "NTD", "", "$", "", "元", "", ",", "", " ", "")
)

// ParsePrice normalises a raw price value of any source shape to TWD.
// Returns nil when the price is absent or unavailable.
func ParsePrice(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return scaled(t)
	case float32:
		return scaled(float64(t))
	case int:
		return scaled(float64(t))
	case int64:
		return scaled(float64(t))
	case string:
		return parsePriceString(t)
	default:
		return nil
	}
}

func scaled(p float64) *float64 {
	if p <= 0 {
		return nil
	}
	if p > MicroUnitThreshold {
		p /= MicroUnitScale
	}
	return &p
}

func parsePriceString(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	lower := strings.ToLower(s)
	for _, token := range unavailableTokens {
		if strings.Contains(lower, token) {
			return nil
		}
	}

	cleaned := currencyCleaner.Replace(s)

	// Ranges like "100-200" keep the first observation.
	if idx := strings.Index(cleaned, "-"); idx > 0 {
		cleaned = cleaned[:idx]
	}

	if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return scaled(f)
	}

	// Best-effort secondary parse: extract the first numeric substring.
	if m := numberPattern.FindString(cleaned); m != "" {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			return scaled(f)
		}
	}

	return nil
}

// claraBagKeys maps supplier bag-price keys to their pack type and weight.
// These sources quote {promo, origin} price pairs per bag size.
var claraBagKeys = []struct {
	key    string
	typ    string
	weight string
}{
	{"bag_price_35kg", "袋裝", "35KG"},
	{"bag_price_5kg", "散裝", "5KG"},
	{"bag_price_22kg", "袋裝", "22KG"},
	{"bag_price_30kg", "袋裝", "30KG"},
	{"bag_price_24kg", "袋裝", "24KG"},
}

// priceAliases is the ranked alias list for the plain price field.
var priceAliases = []string{"price", "價格", "售價"}

// ExtractPriceUnits builds the ordered price observation sequence for a
// record. Bag-price pairs win over a plain price field; a package string
// ("30KG/5KG") contributes unpriced pack entries as a last resort.
func ExtractPriceUnits(fields map[string]any) []domain.PriceUnit {
	var units []domain.PriceUnit

	for _, bag := range claraBagKeys {
		pair, ok := fields[bag.key].(map[string]any)
		if !ok {
			continue
		}
		raw, ok := pair["promo"]
		if !ok || raw == nil {
			raw = pair["origin"]
		}
		if p := ParsePrice(raw); p != nil {
			units = append(units, domain.PriceUnit{Type: bag.typ, Weight: bag.weight, Price: p})
		}
	}
	if len(units) > 0 {
		return units
	}

	if raw, ok := ResolveValue(fields, priceAliases); ok {
		if p := ParsePrice(raw); p != nil {
			return []domain.PriceUnit{{Type: "公斤", Weight: "1KG", Price: p}}
		}
	}

	pack, _ := fields["package"].(string)
	for _, part := range strings.Split(pack, "/") {
		m := packWeightRegexp.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			continue
		}
		weight := m[1] + "KG"
		dup := false
		for _, u := range units {
			if u.Weight == weight {
				dup = true
				break
			}
		}
		if !dup {
			units = append(units, domain.PriceUnit{Type: "包裝", Weight: weight, Price: nil})
		}
	}

	return units
}
