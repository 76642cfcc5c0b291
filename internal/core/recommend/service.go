package recommend

import (
	"context"
	"fmt"

	"skincare-recommender/internal/core/catalog"
	"skincare-recommender/internal/core/classifier"
	"skincare-recommender/internal/core/taxonomy"
	"skincare-recommender/internal/metrics"
	"skincare-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 成分推薦與商品篩選服務；所有欄位於建立後唯讀，可同時服務多個請求
type Service struct {
	classifier    classifier.Classifier
	schema        *taxonomy.Schema
	catalog       *catalog.Catalog
	featureLength int
}

// NewService 建立服務並檢查模型維度與成分結構是否一致
func NewService(clf classifier.Classifier, schema *taxonomy.Schema, cat *catalog.Catalog, featureLength int) (*Service, error) {
	if clf == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	if schema == nil {
		return nil, fmt.Errorf("schema is required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if featureLength <= 0 {
		return nil, fmt.Errorf("%w: expected feature length must be positive, got %d", ErrInvalidFeatureLength, featureLength)
	}

	if shape, ok := classifier.ShapeOf(clf); ok {
		if shape.Outputs > 0 && shape.Outputs != len(schema.IngredientNames) {
			return nil, fmt.Errorf("%w: classifier outputs %d labels, schema %s has %d ingredient names",
				ErrShapeMismatch, shape.Outputs, schema.Version, len(schema.IngredientNames))
		}
		if shape.Inputs > 0 && shape.Inputs != featureLength {
			return nil, fmt.Errorf("%w: classifier expects %d features, configured %d",
				ErrShapeMismatch, shape.Inputs, featureLength)
		}
	}

	for _, w := range schema.Warnings {
		common.LogWarn("Ingredient schema warning",
			zap.String("schema_version", schema.Version),
			zap.String("warning", w),
		)
	}

	return &Service{
		classifier:    clf,
		schema:        schema,
		catalog:       cat,
		featureLength: featureLength,
	}, nil
}

// Recommend 以特徵向量呼叫模型並轉成成分群組判定
func (s *Service) Recommend(ctx context.Context, features []float64) (GroupDecision, error) {
	if len(features) != s.featureLength {
		metrics.RecommendationsTotal.WithLabelValues("invalid_features").Inc()
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidFeatureLength, len(features), s.featureLength)
	}

	rows, err := s.classifier.Predict(ctx, [][]float64{features})
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues("classifier_failure").Inc()
		return nil, fmt.Errorf("%w: %w", ErrClassifierFailure, err)
	}
	if len(rows) == 0 {
		metrics.RecommendationsTotal.WithLabelValues("classifier_failure").Inc()
		return nil, fmt.Errorf("%w: empty prediction", ErrClassifierFailure)
	}

	decisions, err := Interpret(rows[0], s.schema.IngredientNames)
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues("shape_mismatch").Inc()
		return nil, err
	}

	metrics.RecommendationsTotal.WithLabelValues("ok").Inc()
	common.LogDebug("Ingredient recommendation",
		zap.String("schema_version", s.schema.Version),
		zap.Any("ingredients", decisions.Strings()),
	)
	return decisions, nil
}

// FilterProducts 依群組判定與選填的商品類型篩選目錄
func (s *Service) FilterProducts(decisions GroupDecision, productType string) ([]catalog.Product, error) {
	required, forbidden, err := Expand(decisions, s.schema.Taxonomy)
	if err != nil {
		return nil, err
	}

	products := Filter(s.catalog, required, forbidden, productType)
	metrics.FilteredProducts.Observe(float64(len(products)))

	common.LogDebug("Products filtered",
		zap.Int("required_keywords", required.Len()),
		zap.Int("forbidden_keywords", forbidden.Len()),
		zap.String("product_type", productType),
		zap.Int("matched", len(products)),
	)
	return products, nil
}

// ProductTypes 目錄中的商品類型
func (s *Service) ProductTypes() []string {
	return s.catalog.Types()
}

// IngredientNames 模型標籤順序
func (s *Service) IngredientNames() []string {
	out := make([]string, len(s.schema.IngredientNames))
	copy(out, s.schema.IngredientNames)
	return out
}

// SchemaVersion 成分結構版本
func (s *Service) SchemaVersion() string {
	return s.schema.Version
}

// FeatureLength 模型輸入特徵數
func (s *Service) FeatureLength() int {
	return s.featureLength
}

// CatalogSize 目錄商品數
func (s *Service) CatalogSize() int {
	return s.catalog.Len()
}
