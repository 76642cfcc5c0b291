package taxonomy

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultSchema []byte

// Schema 與分類模型共用的成分結構：標籤順序與群組關鍵字
type Schema struct {
	Version string
	// IngredientNames 順序必須與模型輸出標籤順序一致
	IngredientNames []string
	Taxonomy        *Taxonomy
	// Warnings 不影響運作但值得記錄的不一致
	Warnings []string
}

type schemaDocument struct {
	Version         string              `yaml:"version"`
	IngredientNames []string            `yaml:"ingredient_names"`
	Groups          map[string][]string `yaml:"groups"`
}

// Default 內建的成分結構
func Default() (*Schema, error) {
	return Parse(defaultSchema)
}

// Load 從檔案載入成分結構；path 為空時使用內建版本
func Load(path string) (*Schema, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	schema, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return schema, nil
}

// Parse 解析並驗證 YAML 成分結構
func Parse(data []byte) (*Schema, error) {
	var doc schemaDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	doc.Version = strings.TrimSpace(doc.Version)
	if doc.Version == "" {
		return nil, fmt.Errorf("schema version is required")
	}
	if len(doc.IngredientNames) == 0 {
		return nil, fmt.Errorf("ingredient_names must not be empty")
	}

	names := make([]string, len(doc.IngredientNames))
	seen := make(map[string]struct{}, len(doc.IngredientNames))
	for i, name := range doc.IngredientNames {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("ingredient_names[%d] is empty", i)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate ingredient name %q", name)
		}
		seen[name] = struct{}{}
		names[i] = name
	}

	for group, keywords := range doc.Groups {
		for j, kw := range keywords {
			if strings.TrimSpace(kw) == "" {
				return nil, fmt.Errorf("group %q keyword %d is empty", group, j)
			}
		}
	}

	tax := New(doc.Groups)
	schema := &Schema{
		Version:         doc.Version,
		IngredientNames: names,
		Taxonomy:        tax,
	}

	// 未對應的群組只會展開為空集合
	for _, name := range names {
		if !tax.Has(name) {
			schema.Warnings = append(schema.Warnings, fmt.Sprintf("ingredient %q has no keyword group", name))
		}
	}
	for _, group := range tax.Groups() {
		if _, ok := seen[group]; !ok {
			schema.Warnings = append(schema.Warnings, fmt.Sprintf("group %q is not a classifier label", group))
		}
	}

	return schema, nil
}
