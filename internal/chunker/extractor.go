package chunker

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
	"github.com/kohi-labs/kohi-cli/internal/normalisers"
)

// UnknownShopName is the sentinel used when a record carries no shop data.
const UnknownShopName = "未知"

// Extractor turns raw product records into typed retrieval chunks.
type Extractor struct {
	segmentLength int
	overlap       int
	tokenizer     ContentTokenizer
}

// Option configures the extractor.
type Option func(*Extractor)

// WithSegmentLength sets the description window length in runes.
func WithSegmentLength(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.segmentLength = n
		}
	}
}

// WithOverlap sets the description window overlap in runes.
func WithOverlap(n int) Option {
	return func(e *Extractor) {
		if n >= 0 {
			e.overlap = n
		}
	}
}

// WithTokenizer sets the content tokenizer applied to every chunk's text.
// Without one, chunk content is emitted unsegmented.
func WithTokenizer(t ContentTokenizer) Option {
	return func(e *Extractor) {
		e.tokenizer = t
	}
}

// New creates an extractor with the given options.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		segmentLength: DefaultSegmentLength,
		overlap:       DefaultSegmentOverlap,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.overlap >= e.segmentLength {
		e.overlap = e.segmentLength / 4
	}

	return e
}

// Extract derives the chunk set for one record. The result is freshly
// allocated and deterministic: the same record always yields the same
// chunk ids in the same order. A record with no resolvable identity
// yields nil.
func (e *Extractor) Extract(record domain.ProductRecord) []domain.Chunk {
	if !record.HasIdentity() {
		return nil
	}
	if record.ScrapeStatus() != "" && record.ScrapeStatus() != "success" && record.Name == "" {
		return nil
	}

	view := e.buildView(record)
	if view == nil {
		return nil
	}

	docID := deriveDocID(record, view.name)
	if docID == "" {
		return nil
	}

	if !view.hasDetail {
		return []domain.Chunk{e.nameOnlyChunk(record, docID, view.name)}
	}

	meta := e.commonMetadata(record, view)

	chunks := make([]domain.Chunk, 0, 1+len(view.attributes)+len(view.models))
	chunks = append(chunks, e.coreInfoChunk(docID, view, meta))
	chunks = append(chunks, e.descriptionChunks(docID, view, meta)...)
	chunks = append(chunks, e.attributeChunks(docID, view, meta)...)
	chunks = append(chunks, e.modelChunks(docID, view, meta)...)
	return chunks
}

// productView is the shape-independent projection of one record. It is
// populated either from the nested marketplace item payload or from flat
// top-level fields.
type productView struct {
	name        string
	description string
	priceMin    float64
	priceMax    float64
	shopName    string
	shopRating  float64
	itemRating  float64
	categories  []string
	attributes  []attributePair
	models      []modelVariant

	// hasDetail distinguishes a fully described product from a bare title.
	hasDetail bool
}

type attributePair struct {
	name  string
	value string
}

type modelVariant struct {
	id    string
	name  string
	price float64
}

func (e *Extractor) buildView(record domain.ProductRecord) *productView {
	name := normalisers.CanonicalizeTerms(record.Name)

	if item := record.Item(); len(item) > 0 {
		return viewFromItem(record, item, name)
	}
	return viewFromFlat(record, name)
}

// viewFromItem projects the nested marketplace item payload. Marketplace
// prices arrive in micro-units (price * 100000).
func viewFromItem(record domain.ProductRecord, item map[string]any, fallbackName string) *productView {
	v := &productView{shopName: UnknownShopName, hasDetail: true}

	v.name = normalisers.CanonicalizeTerms(stringField(item, "name"))
	if v.name == "" {
		v.name = fallbackName
	}
	if v.name == "" {
		return nil
	}

	v.description = normalisers.CanonicalizeTerms(stringField(item, "description"))
	v.priceMin = microPrice(item["price_min"])
	v.priceMax = microPrice(item["price_max"])

	if shop := shopDetails(record, item); shop != nil {
		if s := stringField(shop, "name"); s != "" {
			v.shopName = s
		}
		v.shopRating = floatField(shop, "rating_star")
	}
	if rating, ok := item["item_rating"].(map[string]any); ok {
		v.itemRating = floatField(rating, "rating_star")
	}

	if cats, ok := item["categories"].([]any); ok {
		for _, c := range cats {
			m, ok := c.(map[string]any)
			if !ok {
				continue
			}
			if dn := normalisers.CanonicalizeTerms(stringField(m, "display_name")); dn != "" {
				v.categories = append(v.categories, dn)
			}
		}
	}

	if attrs, ok := item["attributes"].([]any); ok {
		for _, a := range attrs {
			m, ok := a.(map[string]any)
			if !ok {
				continue
			}
			pair := attributePair{
				name:  normalisers.CanonicalizeTerms(stringField(m, "name")),
				value: normalisers.CanonicalizeTerms(stringField(m, "value")),
			}
			if pair.name != "" && pair.value != "" {
				v.attributes = append(v.attributes, pair)
			}
		}
	}

	if models, ok := item["models"].([]any); ok {
		for _, mv := range models {
			m, ok := mv.(map[string]any)
			if !ok {
				continue
			}
			variant := modelVariant{
				name:  normalisers.CanonicalizeTerms(stringField(m, "name")),
				price: microPrice(m["price"]),
			}
			if variant.name == "" {
				continue
			}
			for _, key := range []string{"modelid", "model_id"} {
				if s := domain.ScalarString(m[key]); s != "" && s != "0" {
					variant.id = s
					break
				}
			}
			v.models = append(v.models, variant)
		}
	}

	return v
}

// viewFromFlat projects a record whose detail lives at the top level,
// as supplier feeds and pre-flattened records do. A record with only a
// name and no detail stays a name-only view.
func viewFromFlat(record domain.ProductRecord, name string) *productView {
	if name == "" {
		return nil
	}
	v := &productView{name: name, shopName: UnknownShopName}

	if desc, ok := record.Fields["description"].(string); ok {
		v.description = normalisers.CanonicalizeTerms(desc)
	}

	if p := normalisers.ParsePrice(record.Price); p != nil {
		v.priceMin = *p
		v.priceMax = *p
	} else if p := normalisers.ParsePrice(record.Fields["price"]); p != nil {
		v.priceMin = *p
		v.priceMax = *p
	}

	if shop, ok := record.Fields["shop_name"].(string); ok && shop != "" {
		v.shopName = shop
	}

	v.hasDetail = v.description != "" || v.priceMin > 0 || v.shopName != UnknownShopName
	return v
}

// shopDetails resolves the shop payload, which marketplace responses
// place either beside the item or inside it.
func shopDetails(record domain.ProductRecord, item map[string]any) map[string]any {
	if inner := record.ScrapeData(); inner != nil {
		if shop, ok := inner["shop_detailed"].(map[string]any); ok {
			return shop
		}
	}
	shop, _ := item["shop_detailed"].(map[string]any)
	return shop
}

func (e *Extractor) commonMetadata(record domain.ProductRecord, view *productView) map[string]any {
	return map[string]any{
		"item_id":          record.ItemID(),
		"link":             record.Link,
		"name":             view.name,
		"price_min":        view.priceMin,
		"price_max":        view.priceMax,
		"shop_name":        view.shopName,
		"shop_rating":      view.shopRating,
		"item_rating":      view.itemRating,
		"categories":       strings.Join(view.categories, " "),
		"full_description": view.description,
		"timestamp":        record.Timestamp,
	}
}

func (e *Extractor) nameOnlyChunk(record domain.ProductRecord, docID, name string) domain.Chunk {
	content := fmt.Sprintf("產品：%s。描述：無詳細描述。價格範圍：未知。商店：未知，評分 0。商品評分：0。", name)
	return domain.Chunk{
		DocID:   docID,
		ChunkID: domain.NewChunkID(docID, domain.ChunkCoreInfo, 0),
		Type:    domain.ChunkCoreInfo,
		Content: e.segment(content),
		Metadata: map[string]any{
			"item_id":          record.ItemID(),
			"link":             record.Link,
			"name":             name,
			"timestamp":        record.Timestamp,
			"source":           "name_only",
			"price_min":        0.0,
			"price_max":        0.0,
			"shop_name":        UnknownShopName,
			"shop_rating":      0.0,
			"item_rating":      0.0,
			"categories":       "",
			"full_description": "無詳細描述",
		},
	}
}

func (e *Extractor) coreInfoChunk(docID string, view *productView, common map[string]any) domain.Chunk {
	categories := strings.Join(view.categories, " ")
	if categories == "" {
		categories = "無分類"
	}
	content := fmt.Sprintf(
		"產品：%s。價格範圍：%.2f TWD 至 %.2f TWD。商店：%s，評分 %.2f。商品評分：%.2f。分類：%s。",
		view.name, view.priceMin, view.priceMax,
		view.shopName, view.shopRating, view.itemRating, categories,
	)
	meta := cloneMetadata(common)
	meta["source"] = "main_product_core"
	return domain.Chunk{
		DocID:    docID,
		ChunkID:  domain.NewChunkID(docID, domain.ChunkCoreInfo, 0),
		Type:     domain.ChunkCoreInfo,
		Content:  e.segment(content),
		Metadata: meta,
	}
}

func (e *Extractor) descriptionChunks(docID string, view *productView, common map[string]any) []domain.Chunk {
	windows := SplitWindows(view.description, e.segmentLength, e.overlap)
	if len(windows) == 0 {
		return nil
	}
	chunks := make([]domain.Chunk, 0, len(windows))
	for i, w := range windows {
		meta := cloneMetadata(common)
		meta["source"] = "main_product_description"
		chunks = append(chunks, domain.Chunk{
			DocID:    docID,
			ChunkID:  domain.NewChunkID(docID, domain.ChunkDescriptionSegment, i),
			Type:     domain.ChunkDescriptionSegment,
			Content:  e.segment(w),
			Metadata: meta,
		})
	}
	return chunks
}

func (e *Extractor) attributeChunks(docID string, view *productView, common map[string]any) []domain.Chunk {
	if len(view.attributes) == 0 {
		return nil
	}
	chunks := make([]domain.Chunk, 0, len(view.attributes))
	for i, attr := range view.attributes {
		content := fmt.Sprintf("商品屬性：%s - %s", attr.name, attr.value)
		meta := cloneMetadata(common)
		meta["source"] = "main_product_attributes"
		chunks = append(chunks, domain.Chunk{
			DocID:    docID,
			ChunkID:  domain.NewChunkID(docID, domain.ChunkAttributeInfo, i),
			Type:     domain.ChunkAttributeInfo,
			Content:  e.segment(content),
			Metadata: meta,
		})
	}
	return chunks
}

func (e *Extractor) modelChunks(docID string, view *productView, common map[string]any) []domain.Chunk {
	if len(view.models) == 0 {
		return nil
	}
	chunks := make([]domain.Chunk, 0, len(view.models))
	for i, model := range view.models {
		content := fmt.Sprintf(
			"變體：%s。價格：%.2f TWD。此為產品 %s 的一個規格選項。",
			model.name, model.price, view.name,
		)
		meta := cloneMetadata(common)
		meta["source"] = "model_variant"
		meta["model_id"] = model.id
		meta["model_name"] = model.name
		meta["model_price"] = model.price
		// Variants are independently price-filterable.
		meta["price_min"] = model.price
		meta["price_max"] = model.price
		chunks = append(chunks, domain.Chunk{
			DocID:    docID,
			ChunkID:  domain.NewChunkID(docID, domain.ChunkModelVariant, i),
			Type:     domain.ChunkModelVariant,
			Content:  e.segment(content),
			Metadata: meta,
		})
	}
	return chunks
}

func (e *Extractor) segment(content string) string {
	if e.tokenizer == nil {
		return content
	}
	return e.tokenizer.Segment(content)
}

// deriveDocID prefers the marketplace item id, then a short hash of the
// link, then a short hash of the name. Hashing keeps ids stable across
// runs for records without native identifiers.
func deriveDocID(record domain.ProductRecord, name string) string {
	if id := record.ItemID(); id != "" {
		return id
	}
	if record.Link != "" {
		return shortHash(record.Link)
	}
	if name != "" {
		return shortHash(name)
	}
	return ""
}

func shortHash(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

func cloneMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+4)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func floatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		var f float64
		if _, err := fmt.Sscanf(v, "%g", &f); err == nil {
			return f
		}
	}
	return 0
}

// microPrice converts a marketplace micro-unit price to TWD. Zero or
// missing stays zero.
func microPrice(v any) float64 {
	switch p := v.(type) {
	case float64:
		if p > 0 {
			return p / 100000
		}
	case int:
		if p > 0 {
			return float64(p) / 100000
		}
	}
	return 0
}
