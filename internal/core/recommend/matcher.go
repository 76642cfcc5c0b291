package recommend

import (
	"sort"
	"strings"
)

// KeywordSource 提供成分群組的關鍵字，未知群組回傳空集合
type KeywordSource interface {
	Keywords(group string) []string
}

// KeywordSet 保持插入順序的小寫關鍵字集合
type KeywordSet struct {
	items []string
	index map[string]struct{}
}

// NewKeywordSet 建立集合；關鍵字會轉小寫並去重
func NewKeywordSet(keywords ...string) *KeywordSet {
	s := &KeywordSet{index: make(map[string]struct{})}
	for _, kw := range keywords {
		s.Add(kw)
	}
	return s
}

// Add 加入關鍵字
func (s *KeywordSet) Add(keyword string) {
	keyword = strings.ToLower(keyword)
	if _, ok := s.index[keyword]; ok {
		return
	}
	s.index[keyword] = struct{}{}
	s.items = append(s.items, keyword)
}

// Contains 是否包含關鍵字
func (s *KeywordSet) Contains(keyword string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[strings.ToLower(keyword)]
	return ok
}

// Len 關鍵字數量
func (s *KeywordSet) Len() int {
	return len(s.list())
}

// Items 依插入順序回傳關鍵字複本
func (s *KeywordSet) Items() []string {
	out := make([]string, s.Len())
	copy(out, s.list())
	return out
}

// list nil 集合視為空集合
func (s *KeywordSet) list() []string {
	if s == nil {
		return nil
	}
	return s.items
}

// Expand 將群組判定分成必要與禁止兩組關鍵字。
// 同一關鍵字可能同時出現在兩組，兩組互不去重。
func Expand(decisions GroupDecision, source KeywordSource) (required, forbidden *KeywordSet, err error) {
	if len(decisions) == 0 {
		return nil, nil, ErrNoGroupsProvided
	}

	// map 走訪順序不固定，先排序讓結果可重現
	groups := make([]string, 0, len(decisions))
	for g := range decisions {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	required = NewKeywordSet()
	forbidden = NewKeywordSet()
	for _, g := range groups {
		target := forbidden
		if decisions[g] == Included {
			target = required
		}
		for _, kw := range source.Keywords(g) {
			target.Add(kw)
		}
	}
	return required, forbidden, nil
}
