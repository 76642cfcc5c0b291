package recommend

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"skincare-recommender/internal/core/catalog"
	"skincare-recommender/internal/core/classifier"
	"skincare-recommender/internal/core/recommend"
	"skincare-recommender/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FilterProductsRequest 商品篩選請求
type FilterProductsRequest struct {
	Ingredients recommend.GroupDecision `json:"ingredients"`
	ProductType string                  `json:"product_type"`
}

// Handler 成分推薦與商品篩選處理器
type Handler struct {
	svc   *recommend.Service
	debug bool
}

// NewHandler 創建處理器；debug 時錯誤響應附帶原始錯誤
func NewHandler(svc *recommend.Service, debug bool) *Handler {
	return &Handler{svc: svc, debug: debug}
}

// HandlePredict 依特徵向量推薦成分群組
func (h *Handler) HandlePredict(c *gin.Context) {
	var req common.PredictRequest
	if err := common.DecodeJSON(c.Request.Body, &req); err != nil {
		h.writeError(c, decodeError(err))
		return
	}

	ctx := common.WithRequestID(c.Request.Context(), requestid.Get(c))
	decisions, err := h.svc.Recommend(ctx, req.Features)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.PredictResponse{Ingredients: decisions.Strings()})
}

// HandleFilterProducts 依群組判定篩選商品
func (h *Handler) HandleFilterProducts(c *gin.Context) {
	var req FilterProductsRequest
	if err := common.DecodeJSON(c.Request.Body, &req); err != nil {
		h.writeError(c, decodeError(err))
		return
	}

	products, err := h.svc.FilterProducts(req.Ingredients, strings.TrimSpace(req.ProductType))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.FilterProductsResponse{Products: summarize(products)})
}

// HandleProductTypes 列出目錄中的商品類型
func (h *Handler) HandleProductTypes(c *gin.Context) {
	c.JSON(http.StatusOK, common.ProductTypesResponse{Types: h.svc.ProductTypes()})
}

func summarize(products []catalog.Product) []common.ProductSummary {
	out := make([]common.ProductSummary, 0, len(products))
	for _, p := range products {
		out = append(out, common.ProductSummary{Name: p.Name, Brand: p.Brand, Type: p.Type})
	}
	return out
}

func (h *Handler) writeError(c *gin.Context, err error) {
	ce := mapError(err)
	if ce.Status >= http.StatusInternalServerError {
		common.LogError("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("code", ce.Code),
			zap.String("request_id", requestid.Get(c)),
			zap.Error(err),
		)
	}
	common.WriteError(c, ce, h.debug)
}

// decodeError 請求體解析失敗：超過大小上限回 413，其餘回 400
func decodeError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return common.ErrRequestTooLarge.WithCause(err)
	}
	return common.ErrInvalidRequest.WithCause(err)
}

// mapError 將領域錯誤轉為 API 錯誤
func mapError(err error) *common.CustomError {
	if ce, ok := common.AsCustomError(err); ok {
		return ce
	}
	switch {
	case errors.Is(err, recommend.ErrInvalidFeatureLength):
		return common.ErrInvalidFeatures.WithCause(err)
	case errors.Is(err, recommend.ErrNoGroupsProvided):
		return common.ErrNoGroups.WithCause(err)
	case errors.Is(err, recommend.ErrShapeMismatch):
		return common.ErrSchemaMismatch.WithCause(err)
	case errors.Is(err, classifier.ErrQueueFull), errors.Is(err, classifier.ErrBreakerOpen):
		return common.ErrClassifierBusy.WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		return common.ErrGatewayTimeout.WithCause(err)
	case errors.Is(err, recommend.ErrClassifierFailure):
		return common.ErrClassifierFailure.WithCause(err)
	default:
		return common.ErrInternalError.WithCause(err)
	}
}
