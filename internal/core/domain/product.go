package domain

// ProductRecord represents a raw, shape-variable record as received from
// a scrape or supplier feed. Well-known top-level fields are promoted;
// everything else stays in Fields for alias-based lookup.
type ProductRecord struct {
	// Name is the listing title, if the source provided one.
	Name string

	// Price is the raw price value. Sources disagree on units: marketplace
	// feeds report micro-units (price * 100000), supplier quote sheets
	// report plain TWD, and some report strings like "NT$300" or "電洽".
	Price any

	// SoldCount is the raw sold-count value, when present.
	SoldCount any

	// Link is the listing URL.
	Link string

	// Timestamp is the scrape timestamp string, when present.
	Timestamp string

	// Fields holds the full raw payload, including nested containers
	// (scrape_result, product_info, shop_info and supplier-specific keys).
	Fields map[string]any
}

// RecordFromFields builds a ProductRecord from a raw decoded payload,
// promoting the well-known top-level fields.
func RecordFromFields(fields map[string]any) ProductRecord {
	record := ProductRecord{Fields: fields}
	if name, ok := fields["name"].(string); ok {
		record.Name = name
	}
	if link, ok := fields["link"].(string); ok {
		record.Link = link
	}
	if v, ok := fields["price"]; ok {
		record.Price = v
	}
	for _, key := range []string{"sold_count", "historical_sold"} {
		if v, ok := fields[key]; ok {
			record.SoldCount = v
			break
		}
	}
	if ts, ok := fields["timestamp"].(string); ok {
		record.Timestamp = ts
	}
	return record
}

// HasIdentity reports whether the record carries at least one resolvable
// identifier. A record with no identity and no name is invalid and dropped.
func (r *ProductRecord) HasIdentity() bool {
	return r.Name != "" || r.Link != "" || r.ItemID() != ""
}

// ItemID returns the marketplace item id from the nested scrape payload,
// or "" when the record has none.
func (r *ProductRecord) ItemID() string {
	item := r.Item()
	if item == nil {
		return ""
	}
	for _, key := range []string{"itemid", "item_id"} {
		if v, ok := item[key]; ok {
			if s := ScalarString(v); s != "" && s != "0" {
				return s
			}
		}
	}
	return ""
}

// Item returns the nested item detail mapping
// (scrape_result.data.data.item), or nil when absent or malformed.
func (r *ProductRecord) Item() map[string]any {
	inner := r.ScrapeData()
	if inner == nil {
		return nil
	}
	item, _ := inner["item"].(map[string]any)
	return item
}

// ScrapeData returns the inner scrape payload (scrape_result.data.data),
// or nil when absent or malformed. Malformed nesting is a recoverable
// condition, never an error.
func (r *ProductRecord) ScrapeData() map[string]any {
	scr, _ := r.Fields["scrape_result"].(map[string]any)
	if scr == nil {
		return nil
	}
	outer, _ := scr["data"].(map[string]any)
	if outer == nil {
		return nil
	}
	inner, _ := outer["data"].(map[string]any)
	return inner
}

// ScrapeStatus returns the scrape_result status string, or "".
func (r *ProductRecord) ScrapeStatus() string {
	scr, _ := r.Fields["scrape_result"].(map[string]any)
	if scr == nil {
		return ""
	}
	s, _ := scr["status"].(string)
	return s
}

// PriceUnit is one price observation for a pack size.
type PriceUnit struct {
	// Type is the pack type (袋裝, 散裝, 公斤, 包裝).
	Type string `json:"type"`

	// Weight is the pack weight label (e.g. "30KG").
	Weight string `json:"weight"`

	// Price is the unit price in TWD. Nil means the source listed the pack
	// without a price (e.g. "電洽").
	Price *float64 `json:"price"`
}

// CanonicalProduct is the normalised, schema-uniform representation of a
// product. All keys are always present even when empty, so downstream
// consumers never need existence checks.
type CanonicalProduct struct {
	ProductCode string         `json:"product_code"`
	Year        string         `json:"year"`
	New         bool           `json:"new"`
	Name        string         `json:"name"`
	EngName     string         `json:"eng_name"`
	Country     string         `json:"country"`
	Region      string         `json:"region"`
	Category    string         `json:"category"`
	Process     string         `json:"process"`
	Specs       map[string]any `json:"specs"`
	Description string         `json:"description"`
	PriceInfo   PriceInfo      `json:"price_info"`
}

// PriceInfo holds the ordered price observations for a product.
// It is always a sequence, never a single scalar, because supplier sheets
// quote multiple pack sizes per bean.
type PriceInfo struct {
	Units []PriceUnit `json:"units"`
}

// FirstPrice returns the first priced unit, or nil when no unit carries
// a price.
func (p PriceInfo) FirstPrice() *float64 {
	for _, u := range p.Units {
		if u.Price != nil {
			return u.Price
		}
	}
	return nil
}
