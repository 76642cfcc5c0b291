package common

// PredictRequest 成分推薦請求
type PredictRequest struct {
	Features []float64 `json:"features"`
}

// PredictResponse 成分推薦響應，值為 "Yes" 或 "No"
type PredictResponse struct {
	Ingredients map[string]string `json:"ingredients"`
}

// ProductSummary 篩選結果中的單一商品
type ProductSummary struct {
	Name  string `json:"name"`
	Brand string `json:"brand"`
	Type  string `json:"type"`
}

// FilterProductsResponse 商品篩選響應
type FilterProductsResponse struct {
	Products []ProductSummary `json:"products"`
}

// ProductTypesResponse 商品類型列表響應
type ProductTypesResponse struct {
	Types []string `json:"types"`
}
