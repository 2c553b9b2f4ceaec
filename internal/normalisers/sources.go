package normalisers

// AliasTable maps each canonical target field to its ranked list of
// candidate source keys. The first alias that resolves (through the
// three-tier policy) wins.
type AliasTable map[string][]string

// Canonical target field names.
const (
	FieldName        = "name"
	FieldEngName     = "eng_name"
	FieldCountry     = "country"
	FieldRegion      = "region"
	FieldCategory    = "category"
	FieldProcess     = "process"
	FieldDescription = "description"
	FieldProductCode = "product_code"
	FieldYear        = "year"
	FieldMoisture    = "moisture"
	FieldDensity     = "density"
)

// defaultAliases covers the key spellings shared across supplier quote
// sheets and marketplace feeds. Supplier-specific tables below override
// individual fields; everything not overridden falls through to these.
var defaultAliases = AliasTable{
	FieldName:        {"name", "品項", "品名", "商品名稱"},
	FieldEngName:     {"eng_name", "english_name", "英文名"},
	FieldCountry:     {"country", "國家", "產國"},
	FieldRegion:      {"region", "產區", "莊園"},
	FieldCategory:    {"category", "分類", "類別"},
	FieldProcess:     {"process", "processing", "處理法"},
	FieldDescription: {"description", "flavor", "風味", "杯測資料", "備註"},
	FieldProductCode: {"product_code", "coffee_code", "編號"},
	FieldYear:        {"year", "年份", "產季"},
	FieldMoisture:    {"moisture", "含水率"},
	FieldDensity:     {"density", "密度"},
}

// sourceAliases holds per-supplier overrides. A supplier appears here
// only when its sheet deviates from the shared spellings; the shopee
// entry additionally handles the nested product_info shape produced by
// the LLM flatten step.
var sourceAliases = map[string]AliasTable{
	"shopee": {
		FieldName:        {"name", "title"},
		FieldCountry:     {"country", "origin"},
		FieldRegion:      {"region"},
		FieldDescription: {"description", "short_description"},
	},
	"克菈菈": {
		FieldName:    {"品項", "name"},
		FieldProcess: {"處理法", "process"},
	},
	"粉紅森林": {
		FieldName:        {"品名", "品項"},
		FieldDescription: {"風味", "杯測資料"},
	},
	"聯傑": {
		FieldName:    {"品項"},
		FieldCountry: {"國家"},
	},
	"守成": {
		FieldName:        {"name", "品項"},
		FieldDescription: {"flavor", "風味"},
	},
	"豐潤": {
		FieldName:   {"name", "品項"},
		FieldRegion: {"產區", "region"},
	},
}

// aliasesFor returns the effective table for a source hint: the default
// table with the source's overrides applied. An unknown hint falls back
// to the defaults.
func aliasesFor(sourceHint string) AliasTable {
	overrides, ok := sourceAliases[sourceHint]
	if !ok {
		return defaultAliases
	}
	merged := make(AliasTable, len(defaultAliases))
	for field, aliases := range defaultAliases {
		merged[field] = aliases
	}
	for field, aliases := range overrides {
		merged[field] = aliases
	}
	return merged
}

// Sources lists the known supplier hints, for CLI help output.
func Sources() []string {
	out := make([]string, 0, len(sourceAliases))
	for k := range sourceAliases {
		out = append(out, k)
	}
	return out
}
