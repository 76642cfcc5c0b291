package recommend

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"skincare-recommender/internal/core/catalog"
	"skincare-recommender/internal/core/classifier"
	"skincare-recommender/internal/core/taxonomy"
)

// stubClassifier 回傳固定結果並記錄呼叫
type stubClassifier struct {
	rows  [][]int
	err   error
	shape *classifier.Shape
	calls int
	batch [][]float64
}

func (s *stubClassifier) Predict(_ context.Context, batch [][]float64) ([][]int, error) {
	s.calls++
	s.batch = batch
	return s.rows, s.err
}

// shapedStub 額外回報模型維度
type shapedStub struct {
	stubClassifier
}

func (s *shapedStub) Shape() classifier.Shape { return *s.shape }

func testSchema(t *testing.T) *taxonomy.Schema {
	t.Helper()
	doc := `
version: test-1
ingredient_names: [niacinamide, fragrance, retinol]
groups:
  niacinamide: [niacinamide]
  fragrance: [parfum, linalool]
  retinol: [retinol]
`
	s, err := taxonomy.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return s
}

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Product{
		catalog.NewProduct("Clear Serum", "Acme", "serum", "Aqua, Niacinamide, Glycerin"),
		catalog.NewProduct("Scented Serum", "Acme", "serum", "Aqua, Niacinamide, Parfum"),
		catalog.NewProduct("Night Cream", "Zed", "cream", "Retinol, Water"),
		catalog.NewProduct("Plain Toner", "Zed", "toner", "Water"),
	})
}

func TestRecommend(t *testing.T) {
	stub := &stubClassifier{rows: [][]int{{1, 0, 1}}}
	svc, err := NewService(stub, testSchema(t), testCatalog(), 4)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	features := []float64{0.1, 0.2, 0.3, 0.4}
	got, err := svc.Recommend(context.Background(), features)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	want := GroupDecision{"niacinamide": Included, "fragrance": Excluded, "retinol": Included}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Recommend = %v, want %v", got, want)
	}
	if stub.calls != 1 || len(stub.batch) != 1 || !reflect.DeepEqual(stub.batch[0], features) {
		t.Errorf("classifier should get a single-row batch, got %v", stub.batch)
	}
}

func TestRecommendInvalidFeatureLength(t *testing.T) {
	stub := &stubClassifier{rows: [][]int{{1, 0, 1}}}
	svc, err := NewService(stub, testSchema(t), testCatalog(), 15)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Recommend(context.Background(), make([]float64, 10))
	if !errors.Is(err, ErrInvalidFeatureLength) {
		t.Fatalf("expected ErrInvalidFeatureLength, got %v", err)
	}
	if stub.calls != 0 {
		t.Errorf("classifier must not be called, calls = %d", stub.calls)
	}

	_, err = svc.Recommend(context.Background(), nil)
	if !errors.Is(err, ErrInvalidFeatureLength) {
		t.Fatalf("expected ErrInvalidFeatureLength for empty features, got %v", err)
	}
}

func TestRecommendClassifierFailure(t *testing.T) {
	cause := errors.New("model exploded")
	svc, err := NewService(&stubClassifier{err: cause}, testSchema(t), testCatalog(), 2)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Recommend(context.Background(), []float64{1, 2})
	if !errors.Is(err, ErrClassifierFailure) {
		t.Fatalf("expected ErrClassifierFailure, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("original cause should be preserved, got %v", err)
	}

	svc, _ = NewService(&stubClassifier{err: classifier.ErrQueueFull}, testSchema(t), testCatalog(), 2)
	_, err = svc.Recommend(context.Background(), []float64{1, 2})
	if !errors.Is(err, classifier.ErrQueueFull) || !errors.Is(err, ErrClassifierFailure) {
		t.Errorf("queue full should surface as classifier failure, got %v", err)
	}
}

func TestRecommendEmptyPrediction(t *testing.T) {
	svc, _ := NewService(&stubClassifier{rows: [][]int{}}, testSchema(t), testCatalog(), 1)
	if _, err := svc.Recommend(context.Background(), []float64{1}); !errors.Is(err, ErrClassifierFailure) {
		t.Fatalf("expected ErrClassifierFailure, got %v", err)
	}
}

func TestRecommendShapeMismatch(t *testing.T) {
	svc, _ := NewService(&stubClassifier{rows: [][]int{{1, 0}}}, testSchema(t), testCatalog(), 1)
	if _, err := svc.Recommend(context.Background(), []float64{1}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestNewServiceConsistencyCheck(t *testing.T) {
	tests := []struct {
		name    string
		shape   classifier.Shape
		wantErr bool
	}{
		{"matching", classifier.Shape{Inputs: 4, Outputs: 3}, false},
		{"unknown dims", classifier.Shape{}, false},
		{"output mismatch", classifier.Shape{Inputs: 4, Outputs: 25}, true},
		{"input mismatch", classifier.Shape{Inputs: 15, Outputs: 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape := tt.shape
			stub := &shapedStub{stubClassifier{shape: &shape}}
			_, err := NewService(stub, testSchema(t), testCatalog(), 4)
			if tt.wantErr {
				if !errors.Is(err, ErrShapeMismatch) {
					t.Fatalf("expected ErrShapeMismatch, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewService: %v", err)
			}
		})
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	schema := testSchema(t)
	if _, err := NewService(nil, schema, testCatalog(), 1); err == nil {
		t.Error("expected error without classifier")
	}
	if _, err := NewService(&stubClassifier{}, nil, testCatalog(), 1); err == nil {
		t.Error("expected error without schema")
	}
	if _, err := NewService(&stubClassifier{}, schema, nil, 1); err == nil {
		t.Error("expected error without catalog")
	}
	if _, err := NewService(&stubClassifier{}, schema, testCatalog(), 0); err == nil {
		t.Error("expected error for zero feature length")
	}
}

func TestFilterProducts(t *testing.T) {
	svc, err := NewService(&stubClassifier{}, testSchema(t), testCatalog(), 1)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	products, err := svc.FilterProducts(GroupDecision{"niacinamide": Included, "fragrance": Excluded}, "")
	if err != nil {
		t.Fatalf("FilterProducts: %v", err)
	}
	if !reflect.DeepEqual(names(products), []string{"Clear Serum"}) {
		t.Errorf("FilterProducts = %v", names(products))
	}

	products, _ = svc.FilterProducts(GroupDecision{"niacinamide": Included, "retinol": Included}, "Cream")
	if !reflect.DeepEqual(names(products), []string{"Night Cream"}) {
		t.Errorf("FilterProducts with type = %v", names(products))
	}

	products, _ = svc.FilterProducts(GroupDecision{"fragrance": Excluded}, "")
	if len(products) != 0 {
		t.Errorf("no required groups should match nothing, got %v", names(products))
	}

	if _, err := svc.FilterProducts(GroupDecision{}, "serum"); !errors.Is(err, ErrNoGroupsProvided) {
		t.Errorf("expected ErrNoGroupsProvided, got %v", err)
	}
}

func TestServiceAccessors(t *testing.T) {
	svc, _ := NewService(&stubClassifier{}, testSchema(t), testCatalog(), 7)
	if got := svc.ProductTypes(); !reflect.DeepEqual(got, []string{"serum", "cream", "toner"}) {
		t.Errorf("ProductTypes = %v", got)
	}
	if svc.SchemaVersion() != "test-1" || svc.FeatureLength() != 7 || svc.CatalogSize() != 4 {
		t.Errorf("unexpected accessors: %s %d %d", svc.SchemaVersion(), svc.FeatureLength(), svc.CatalogSize())
	}
	if got := svc.IngredientNames(); !reflect.DeepEqual(got, []string{"niacinamide", "fragrance", "retinol"}) {
		t.Errorf("IngredientNames = %v", got)
	}
}
