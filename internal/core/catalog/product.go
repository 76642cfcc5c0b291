package catalog

import (
	"strings"
)

// Product 商品資料；ingredients 在建立時一次性正規化，之後不可變更
type Product struct {
	Name  string
	Brand string
	// Type 可能為空（資料來源缺值）
	Type string

	rawIngredients string
	tokens         []string
}

// NewProduct 建立商品並正規化成分字串
func NewProduct(name, brand, productType, rawIngredients string) Product {
	return Product{
		Name:           name,
		Brand:          brand,
		Type:           productType,
		rawIngredients: rawIngredients,
		tokens:         Tokenize(rawIngredients),
	}
}

// RawIngredients 原始成分字串
func (p Product) RawIngredients() string {
	return p.rawIngredients
}

// Tokens 回傳正規化後成分的複本
func (p Product) Tokens() []string {
	out := make([]string, len(p.tokens))
	copy(out, p.tokens)
	return out
}

// ContainsKeyword 任一成分包含 keyword 子字串即為 true；keyword 需已轉小寫
func (p Product) ContainsKeyword(keyword string) bool {
	for _, tok := range p.tokens {
		if strings.Contains(tok, keyword) {
			return true
		}
	}
	return false
}

// HasType 商品類型是否與 productType 相符（不分大小寫，比對時忽略前後空白）
func (p Product) HasType(productType string) bool {
	stored := strings.TrimSpace(p.Type)
	if stored == "" {
		return false
	}
	return strings.EqualFold(stored, strings.TrimSpace(productType))
}

// Tokenize 以逗號切分成分字串，每項去除空白並轉小寫；空白項目略過
func Tokenize(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		tok := strings.ToLower(strings.TrimSpace(part))
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
