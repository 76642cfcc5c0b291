package recommend

import "errors"

var (
	// ErrShapeMismatch 標籤向量長度與成分名稱數量不符，代表模型與成分結構版本不一致
	ErrShapeMismatch = errors.New("label vector does not match ingredient names")
	// ErrInvalidFeatureLength 特徵向量長度與模型輸入不符
	ErrInvalidFeatureLength = errors.New("invalid feature vector length")
	// ErrNoGroupsProvided 未提供任何成分群組判定
	ErrNoGroupsProvided = errors.New("no ingredient groups provided")
	// ErrClassifierFailure 模型推論失敗
	ErrClassifierFailure = errors.New("classifier failure")
)
