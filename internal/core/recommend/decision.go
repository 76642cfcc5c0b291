package recommend

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Decision 單一成分群組的推薦結果
type Decision bool

const (
	Excluded Decision = false
	Included Decision = true
)

// String 對外表示為 "Yes" / "No"
func (d Decision) String() string {
	if d {
		return "Yes"
	}
	return "No"
}

// MarshalJSON 輸出 "Yes" / "No"
func (d Decision) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON 只有字串 "Yes"（大小寫完全相符）為 Included，其餘任何值皆為 Excluded
func (d *Decision) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s, ok := v.(string)
	*d = Decision(ok && s == "Yes")
	return nil
}

// GroupDecision 成分群組到推薦結果的對照
type GroupDecision map[string]Decision

// Strings 轉為 group → "Yes"/"No"
func (g GroupDecision) Strings() map[string]string {
	out := make(map[string]string, len(g))
	for group, d := range g {
		out[group] = d.String()
	}
	return out
}

// Interpret 將模型輸出的標籤向量依位置對應到成分名稱；labels[i] == 1 為 Included
func Interpret(labels []int, names []string) (GroupDecision, error) {
	if len(labels) != len(names) {
		return nil, fmt.Errorf("%w: %d labels for %d ingredient names", ErrShapeMismatch, len(labels), len(names))
	}
	decisions := make(GroupDecision, len(names))
	for i, name := range names {
		decisions[name] = Decision(labels[i] == 1)
	}
	return decisions, nil
}
