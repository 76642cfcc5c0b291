package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{}},
		{"blank", "   ", []string{}},
		{"single", "Niacinamide", []string{"niacinamide"}},
		{"trim and lower", " Aqua , Hyaluronic Acid,GLYCERIN ", []string{"aqua", "hyaluronic acid", "glycerin"}},
		{"skips empty entries", "water,, ,parfum,", []string{"water", "parfum"}},
		{"keeps punctuation", "1,2-Hexanediol, PEG-100 Stearate", []string{"1", "2-hexanediol", "peg-100 stearate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestProductContainsKeyword(t *testing.T) {
	p := NewProduct("Serum", "Brand", "serum", "Water, Sodium Hyaluronate, Hyaluronic Acid")

	if !p.ContainsKeyword("hyaluronic acid") {
		t.Error("expected case-insensitive match on normalized token")
	}
	if !p.ContainsKeyword("hyaluronate") {
		t.Error("expected substring match inside a token")
	}
	if p.ContainsKeyword("water, sodium") {
		t.Error("keyword must not match across token boundaries")
	}
	if p.ContainsKeyword("retinol") {
		t.Error("unexpected match")
	}
}

func TestProductTokensImmutable(t *testing.T) {
	p := NewProduct("n", "b", "t", "a, b")
	tokens := p.Tokens()
	tokens[0] = "zzz"
	if p.ContainsKeyword("zzz") {
		t.Error("product tokens changed through Tokens() copy")
	}
	if p.RawIngredients() != "a, b" {
		t.Errorf("RawIngredients = %q", p.RawIngredients())
	}
}

func TestProductHasType(t *testing.T) {
	tests := []struct {
		stored, query string
		want          bool
	}{
		{"serum", "Serum", true},
		{"Serum", "SERUM", true},
		{"serums", "Serum", false},
		{"", "Serum", false},
		{"cleanser", "serum", false},
		{" Serum ", "serum", true},
		{"   ", "", false},
	}
	for _, tt := range tests {
		p := NewProduct("n", "b", tt.stored, "")
		if got := p.HasType(tt.query); got != tt.want {
			t.Errorf("HasType(stored=%q, query=%q) = %v, want %v", tt.stored, tt.query, got, tt.want)
		}
	}
}

const sampleCSV = `name,brand,type,ingridients
Glow Serum,Acme,serum,"Aqua, Niacinamide, Glycerin"
Calm Cream,Acme,moisturizer,"Water, Panthenol, Parfum"
No Type,Other,,"Water"
Plain,Other,serum,
Second Serum,Zed,Serum,"Retinol"
`

func TestLoadCSV(t *testing.T) {
	c, err := LoadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if c.Len() != 5 {
		t.Fatalf("Len = %d, want 5", c.Len())
	}

	products := c.Products()
	if products[0].Name != "Glow Serum" || products[0].Brand != "Acme" || products[0].Type != "serum" {
		t.Errorf("unexpected first product: %+v", products[0])
	}
	if got := products[0].Tokens(); !reflect.DeepEqual(got, []string{"aqua", "niacinamide", "glycerin"}) {
		t.Errorf("tokens = %v", got)
	}
	if got := products[3].Tokens(); len(got) != 0 {
		t.Errorf("expected no tokens for empty ingredients, got %v", got)
	}
	if products[2].Type != "" {
		t.Errorf("expected empty type, got %q", products[2].Type)
	}

	// 不同大小寫視為不同類型，保留首次出現順序
	if got := c.Types(); !reflect.DeepEqual(got, []string{"serum", "moisturizer", "Serum"}) {
		t.Errorf("Types = %v", got)
	}
}

func TestLoadCSVAlternateColumnAndMissingFields(t *testing.T) {
	data := "Ingredients,Name\n\"Zinc Oxide, Water\",Sunscreen\n"
	c, err := LoadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	p := c.Products()[0]
	if p.Name != "Sunscreen" || p.Brand != "" || p.Type != "" {
		t.Errorf("unexpected product: %+v", p)
	}
	if !p.ContainsKeyword("zinc oxide") {
		t.Error("expected zinc oxide token")
	}
}

func TestLoadCSVKeepsFieldsAsStored(t *testing.T) {
	data := "name,brand,type,ingridients\n Glow Serum , Acme , Serum ,\"Aqua, Niacinamide\"\n"
	c, err := LoadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	p := c.Products()[0]
	if p.Name != " Glow Serum " || p.Brand != " Acme " || p.Type != " Serum " {
		t.Errorf("fields changed at load: %+v", p)
	}
	if !p.HasType("serum") {
		t.Error("expected type match ignoring surrounding whitespace")
	}
	if got := c.Types(); !reflect.DeepEqual(got, []string{" Serum "}) {
		t.Errorf("Types = %q", got)
	}
	if got := p.Tokens(); !reflect.DeepEqual(got, []string{"aqua", "niacinamide"}) {
		t.Errorf("tokens = %v", got)
	}
}

func TestLoadCSVErrors(t *testing.T) {
	if _, err := LoadCSV(strings.NewReader("")); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := LoadCSV(strings.NewReader("name,brand\nx,y\n")); err == nil {
		t.Error("expected error for missing ingredients column")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datasheet.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c.Len() != 5 {
		t.Errorf("Len = %d", c.Len())
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCatalogProductsIsCopy(t *testing.T) {
	c := New([]Product{NewProduct("a", "b", "c", "d")})
	ps := c.Products()
	ps[0].Name = "changed"
	if c.Products()[0].Name != "a" {
		t.Error("catalog mutated through Products() result")
	}

	var names []string
	c.Each(func(p Product) bool {
		names = append(names, p.Name)
		return true
	})
	if !reflect.DeepEqual(names, []string{"a"}) {
		t.Errorf("Each visited %v", names)
	}
}
