package normalisers

import (
	"fmt"
	"strings"
)

// UnknownCountryZh is the sentinel for an unresolvable country. Resolution
// degrades to this explicit marker, never to an empty string silently
// mixed with valid data.
const UnknownCountryZh = "未知"

// UnknownCountryEn is the English unknown sentinel.
const UnknownCountryEn = "Unknown"

// countryAbbreviations expands the two-character supplier shorthand to
// the full Traditional Chinese country name.
var countryAbbreviations = map[string]string{
	"宏都": "宏都拉斯",
	"瓜地": "瓜地馬拉",
	"尼加": "尼加拉瓜",
	"哥斯": "哥斯大黎加",
	"薩國": "薩爾瓦多",
	"衣索": "衣索比亞",
	"哥倫": "哥倫比亞",
	"巴拿": "巴拿馬",
	"巴西": "巴西",
	"肯亞": "肯亞",
	"祕魯": "祕魯",
	"緬甸": "緬甸",
	"玻利": "玻利維亞",
	"盧安": "盧安達",
	"東帝": "東帝汶",
	"巴紐": "巴布亞新幾內亞",
	"坦尚": "坦尚尼亞",
}

// countryZhToEn maps the canonical Traditional Chinese country name to
// its English name.
var countryZhToEn = map[string]string{
	"衣索比亞":    "Ethiopia",
	"哥倫比亞":    "Colombia",
	"肯亞":      "Kenya",
	"巴拿馬":     "Panama",
	"哥斯大黎加":   "Costa Rica",
	"宏都拉斯":    "Honduras",
	"祕魯":      "Peru",
	"印尼":      "Indonesia",
	"巴西":      "Brazil",
	"緬甸":      "Myanmar",
	"瓜地馬拉":    "Guatemala",
	"尼加拉瓜":    "Nicaragua",
	"玻利維亞":    "Bolivia",
	"盧安達":     "Rwanda",
	"東帝汶":     "Timor-Leste",
	"印度":      "India",
	"巴布亞新幾內亞": "Papua New Guinea",
	"坦尚尼亞":    "Tanzania",
	"薩爾瓦多":    "El Salvador",
	"墨西哥":     "Mexico",
	"葉門":      "Yemen",
	"中國":      "China",
	"寮國":      "Laos",
	"泰國":      "Thailand",
	"越南":      "Vietnam",
	"蒲隆地":     "Burundi",
	"烏干達":     "Uganda",
	"尚比亞":     "Zambia",
	"馬拉威":     "Malawi",
	"牙買加":     "Jamaica",
	"夏威夷":     "Hawaii",
	"厄瓜多":     "Ecuador",
	"多明尼加":    "Dominican Republic",
	"澳洲":      "Australia",
	"剛果":      "Congo",
}

// countryEnToZh is the reverse table, keyed by upper-case English name.
// Built once at init from countryZhToEn.
var countryEnToZh = func() map[string]string {
	m := make(map[string]string, len(countryZhToEn))
	for zh, en := range countryZhToEn {
		m[strings.ToUpper(en)] = zh
	}
	return m
}()

func init() {
	if err := validateCountryTables(); err != nil {
		panic(err)
	}
}

// validateCountryTables asserts every abbreviation expands to a name
// present in the canonical table. The tables are process-constant, so a
// violation is a programming error caught at startup, not patched at
// runtime.
func validateCountryTables() error {
	for abbr, full := range countryAbbreviations {
		if _, ok := countryZhToEn[full]; !ok {
			return fmt.Errorf("country abbreviation %q expands to %q, which is not in the canonical table", abbr, full)
		}
	}
	return nil
}

// FullChineseCountry resolves a country input of any supported form
// (canonical zh name, two-character abbreviation, English name) to the
// full Traditional Chinese name. Unresolvable input yields 未知.
func FullChineseCountry(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return UnknownCountryZh
	}
	if _, ok := countryZhToEn[input]; ok {
		return input
	}
	if full, ok := countryAbbreviations[input]; ok {
		return full
	}
	if zh, ok := countryEnToZh[strings.ToUpper(input)]; ok {
		return zh
	}
	return UnknownCountryZh
}

// EnglishCountry resolves a country input to its English name, going
// through the Chinese canonical form first so abbreviations also resolve.
func EnglishCountry(input string) string {
	zh := FullChineseCountry(input)
	if zh == UnknownCountryZh {
		return UnknownCountryEn
	}
	return countryZhToEn[zh]
}
