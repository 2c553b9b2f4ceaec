package normalisers

import (
	"github.com/kohi-labs/kohi-cli/internal/core/domain"
)

// Normaliser maps raw product records into the canonical product shape.
// One instance handles every source: the per-supplier differences live in
// alias tables, not code paths.
type Normaliser struct{}

// New creates a normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Normalise converts a raw record to its canonical form. Every canonical
// key is present in the output even when empty; a field no tier can
// resolve gets its zero value, guaranteeing uniform downstream access.
func (n *Normaliser) Normalise(raw domain.ProductRecord, sourceHint string) domain.CanonicalProduct {
	fields := effectiveFields(raw)
	aliases := aliasesFor(sourceHint)

	p := domain.CanonicalProduct{
		Name:        ResolveString(fields, aliases[FieldName]),
		EngName:     ResolveString(fields, aliases[FieldEngName]),
		Region:      ResolveString(fields, aliases[FieldRegion]),
		Category:    ResolveString(fields, aliases[FieldCategory]),
		Process:     ResolveString(fields, aliases[FieldProcess]),
		Description: ResolveString(fields, aliases[FieldDescription]),
		ProductCode: ResolveString(fields, aliases[FieldProductCode]),
		Year:        ResolveString(fields, aliases[FieldYear]),
		Specs:       map[string]any{},
		PriceInfo:   domain.PriceInfo{Units: []domain.PriceUnit{}},
	}

	if p.Name == "" {
		p.Name = raw.Name
	}
	p.Name = CanonicalizeTerms(p.Name)
	p.Description = CanonicalizeTerms(p.Description)
	p.Category = CanonicalizeTerms(p.Category)

	p.Country = FullChineseCountry(ResolveString(fields, aliases[FieldCountry]))
	if p.EngName == "" {
		// Supplier sheets rarely carry an English-name column; derive it
		// from the resolved country. Unknown countries yield "Unknown".
		p.EngName = EnglishCountry(p.Country)
	}

	if v, ok := ResolveValue(fields, aliases[FieldMoisture]); ok {
		p.Specs["moisture"] = v
	}
	if v, ok := ResolveValue(fields, aliases[FieldDensity]); ok {
		p.Specs["density"] = v
	}

	if units := ExtractPriceUnits(fields); units != nil {
		p.PriceInfo.Units = units
	}

	return p
}

// effectiveFields merges a record's promoted top-level fields into its
// raw payload so alias resolution sees one flat mapping. The nested
// product_info block, when present, is flattened in as well - the LLM
// flatten step emits that shape for marketplace records.
func effectiveFields(raw domain.ProductRecord) map[string]any {
	fields := make(map[string]any, len(raw.Fields)+4)
	for k, v := range raw.Fields {
		fields[k] = v
	}
	if info, ok := raw.Fields["product_info"].(map[string]any); ok {
		for k, v := range info {
			if _, exists := fields[k]; !exists {
				fields[k] = v
			}
		}
	}
	if raw.Name != "" {
		if _, ok := fields["name"]; !ok {
			fields["name"] = raw.Name
		}
	}
	if raw.Price != nil {
		if _, ok := fields["price"]; !ok {
			fields["price"] = raw.Price
		}
	}
	return fields
}
