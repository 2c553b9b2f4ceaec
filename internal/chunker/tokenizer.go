package chunker

import (
	"strings"

	"github.com/go-ego/gse"
)

// ContentTokenizer segments chunk text into space-joined tokens before
// embedding. The zh embedding model expects pre-segmented input; without
// segmentation, multi-word Chinese phrases embed as one opaque token.
type ContentTokenizer interface {
	Segment(text string) string
}

// domainTerms are coffee-trade words the general dictionary splits badly.
var domainTerms = []string{
	"藝妓", "藝伎", "瑰夏", "Geisha", "咖啡", "生豆",
	"水洗", "日曬", "蜜處理", "厭氧", "半水洗",
	"酒香", "花香", "果香",
}

// Tokenizer is a gse-backed ContentTokenizer with the coffee-domain
// custom dictionary loaded.
type Tokenizer struct {
	seg gse.Segmenter
}

// NewTokenizer loads the default Chinese dictionary plus the domain
// terms. Loading is expensive; construct once and share.
func NewTokenizer() (*Tokenizer, error) {
	t := &Tokenizer{}
	if err := t.seg.LoadDict(); err != nil {
		return nil, err
	}
	for _, w := range domainTerms {
		if err := t.seg.AddToken(w, 100); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Segment cuts text and joins the tokens with single spaces.
func (t *Tokenizer) Segment(text string) string {
	if text == "" {
		return ""
	}
	return strings.Join(t.seg.Cut(text, true), " ")
}
