package recommend

import (
	"skincare-recommender/internal/core/catalog"
)

// Matches 商品至少含一個必要關鍵字，且不含任何禁止關鍵字。
// 關鍵字同時為必要與禁止時，禁止優先。
func Matches(p catalog.Product, required, forbidden *KeywordSet) bool {
	if required.Len() == 0 {
		return false
	}

	hasRequired := false
	for _, kw := range required.list() {
		if p.ContainsKeyword(kw) {
			hasRequired = true
			break
		}
	}
	if !hasRequired {
		return false
	}

	for _, kw := range forbidden.list() {
		if p.ContainsKeyword(kw) {
			return false
		}
	}
	return true
}

// Filter 依關鍵字條件篩選商品，productType 非空時再以類型（不分大小寫）過濾。
// 結果保留目錄原始順序。
func Filter(c *catalog.Catalog, required, forbidden *KeywordSet, productType string) []catalog.Product {
	matched := []catalog.Product{}
	if required.Len() == 0 {
		return matched
	}
	c.Each(func(p catalog.Product) bool {
		if !Matches(p, required, forbidden) {
			return true
		}
		if productType != "" && !p.HasType(productType) {
			return true
		}
		matched = append(matched, p)
		return true
	})
	return matched
}
