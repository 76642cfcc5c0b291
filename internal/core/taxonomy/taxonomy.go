package taxonomy

import (
	"sort"
	"strings"
)

// Taxonomy 成分群組到關鍵字的對照表，建立後唯讀
type Taxonomy struct {
	groups map[string][]string
}

// New 建立對照表；關鍵字會去除前後空白、轉小寫並去重，空字串會被略過
func New(groups map[string][]string) *Taxonomy {
	t := &Taxonomy{groups: make(map[string][]string, len(groups))}
	for group, keywords := range groups {
		seen := make(map[string]struct{}, len(keywords))
		normalized := make([]string, 0, len(keywords))
		for _, kw := range keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			normalized = append(normalized, kw)
		}
		t.groups[group] = normalized
	}
	return t
}

// Keywords 回傳群組的關鍵字；未知群組回傳 nil
func (t *Taxonomy) Keywords(group string) []string {
	keywords, ok := t.groups[group]
	if !ok {
		return nil
	}
	out := make([]string, len(keywords))
	copy(out, keywords)
	return out
}

// Has 群組是否存在
func (t *Taxonomy) Has(group string) bool {
	_, ok := t.groups[group]
	return ok
}

// Groups 依字母排序回傳所有群組
func (t *Taxonomy) Groups() []string {
	groups := make([]string, 0, len(t.groups))
	for g := range t.groups {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

// Len 群組數量
func (t *Taxonomy) Len() int {
	return len(t.groups)
}
