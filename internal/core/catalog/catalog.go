package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"skincare-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Catalog 啟動時載入的唯讀商品清單，可供多個請求同時讀取
type Catalog struct {
	products []Product
	types    []string
}

// New 以既有商品建立目錄，保留輸入順序
func New(products []Product) *Catalog {
	c := &Catalog{products: make([]Product, len(products))}
	copy(c.products, products)

	seen := make(map[string]struct{})
	for _, p := range c.products {
		if p.Type == "" {
			continue
		}
		if _, ok := seen[p.Type]; ok {
			continue
		}
		seen[p.Type] = struct{}{}
		c.types = append(c.types, p.Type)
	}
	return c
}

// Len 商品數量
func (c *Catalog) Len() int {
	return len(c.products)
}

// Products 依原始順序回傳商品的複本
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Each 依原始順序走訪商品；fn 回傳 false 時停止
func (c *Catalog) Each(fn func(Product) bool) {
	for _, p := range c.products {
		if !fn(p) {
			return
		}
	}
}

// Types 依首次出現順序回傳不重複且非空的商品類型
func (c *Catalog) Types() []string {
	out := make([]string, len(c.types))
	copy(out, c.types)
	return out
}

// 欄位名稱；資料表沿用 "ingridients" 拼法
var ingredientColumns = []string{"ingridients", "ingredients"}

// LoadFile 從 CSV 檔載入商品目錄
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	c, err := LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}

	common.LogInfo("Catalog loaded",
		zap.String("path", path),
		zap.Int("products", c.Len()),
		zap.Int("types", len(c.types)),
	)
	return c, nil
}

// LoadCSV 讀取含標題列的 CSV；必須有成分欄位，name/brand/type 可缺
func LoadCSV(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catalog is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if _, dup := index[col]; !dup {
			index[col] = i
		}
	}

	ingredientCol := -1
	for _, name := range ingredientColumns {
		if i, ok := index[name]; ok {
			ingredientCol = i
			break
		}
	}
	if ingredientCol < 0 {
		return nil, fmt.Errorf("missing ingredients column (expected one of %v)", ingredientColumns)
	}

	field := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var products []Product
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		raw := ""
		if ingredientCol < len(record) {
			raw = record[ingredientCol]
		}
		products = append(products, NewProduct(
			field(record, "name"),
			field(record, "brand"),
			field(record, "type"),
			raw,
		))
	}

	return New(products), nil
}
