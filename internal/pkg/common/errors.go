package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Error   string `json:"error"`             // 錯誤信息
	Code    string `json:"code"`              // 錯誤代碼
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithCause 複製預定義錯誤並附上原始錯誤
func (e *CustomError) WithCause(err error) *CustomError {
	return &CustomError{
		Code:    e.Code,
		Message: e.Message,
		Status:  e.Status,
		Err:     err,
	}
}

// Response 轉為 API 錯誤響應；debug 時附上原始錯誤
func (e *CustomError) Response(debug bool) ErrorResponse {
	resp := ErrorResponse{Error: e.Message, Code: e.Code}
	if debug && e.Err != nil {
		resp.Details = e.Err.Error()
	}
	return resp
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// AsCustomError 取出錯誤鏈中的 CustomError
func AsCustomError(err error) (*CustomError, bool) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest   = "INVALID_REQUEST"    // 400
	ErrCodeInvalidFeatures  = "INVALID_FEATURES"   // 400
	ErrCodeNoGroups         = "NO_GROUPS_PROVIDED" // 400
	ErrCodeNotFound         = "NOT_FOUND"          // 404
	ErrCodeRequestTooLarge  = "REQUEST_TOO_LARGE"  // 413
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"  // 429
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED" // 405

	// 服務器錯誤 (5xx)
	ErrCodeInternalError     = "INTERNAL_ERROR"     // 500
	ErrCodeSchemaMismatch    = "SCHEMA_MISMATCH"    // 500
	ErrCodeClassifierFailure = "CLASSIFIER_FAILURE" // 502
	ErrCodeClassifierBusy    = "CLASSIFIER_BUSY"    // 503
	ErrCodeGatewayTimeout    = "GATEWAY_TIMEOUT"    // 504
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest   = NewError(ErrCodeInvalidRequest, "Invalid request format", http.StatusBadRequest, nil)
	ErrInvalidFeatures  = NewError(ErrCodeInvalidFeatures, "Invalid input features", http.StatusBadRequest, nil)
	ErrNoGroups         = NewError(ErrCodeNoGroups, "No ingredient groups provided", http.StatusBadRequest, nil)
	ErrNotFound         = NewError(ErrCodeNotFound, "Resource not found", http.StatusNotFound, nil)
	ErrRequestTooLarge  = NewError(ErrCodeRequestTooLarge, "Request body too large", http.StatusRequestEntityTooLarge, nil)
	ErrTooManyRequests  = NewError(ErrCodeTooManyRequests, "Too many requests", http.StatusTooManyRequests, nil)
	ErrMethodNotAllowed = NewError(ErrCodeMethodNotAllowed, "Method not allowed", http.StatusMethodNotAllowed, nil)

	// 服務器錯誤
	ErrInternalError     = NewError(ErrCodeInternalError, "Internal server error", http.StatusInternalServerError, nil)
	ErrSchemaMismatch    = NewError(ErrCodeSchemaMismatch, "Classifier output does not match ingredient schema", http.StatusInternalServerError, nil)
	ErrClassifierFailure = NewError(ErrCodeClassifierFailure, "Classifier failed", http.StatusBadGateway, nil)
	ErrClassifierBusy    = NewError(ErrCodeClassifierBusy, "Classifier is busy, retry later", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout    = NewError(ErrCodeGatewayTimeout, "Request timeout", http.StatusGatewayTimeout, nil)
)
