package classifier

import (
	"context"
	"errors"
)

// Classifier 多標籤分類模型：輸入一批特徵向量，輸出對應的 0/1 標籤向量
type Classifier interface {
	Predict(ctx context.Context, batch [][]float64) ([][]int, error)
}

// Shape 模型的輸入特徵數與輸出標籤數；0 表示未知
type Shape struct {
	Inputs  int
	Outputs int
}

// Shaped 能回報自身輸入輸出維度的模型
type Shaped interface {
	Shape() Shape
}

// Wrapper 包裝另一個 Classifier 的中介層
type Wrapper interface {
	Unwrap() Classifier
}

// ShapeOf 沿著包裝鏈尋找可回報維度的模型
func ShapeOf(c Classifier) (Shape, bool) {
	for c != nil {
		if s, ok := c.(Shaped); ok {
			return s.Shape(), true
		}
		w, ok := c.(Wrapper)
		if !ok {
			return Shape{}, false
		}
		c = w.Unwrap()
	}
	return Shape{}, false
}

var (
	// ErrQueueFull 推論隊列已滿
	ErrQueueFull = errors.New("inference queue is full")
	// ErrClosed 推論隊列已關閉
	ErrClosed = errors.New("classifier is closed")
	// ErrEmptyBatch 輸入批次為空
	ErrEmptyBatch = errors.New("empty batch")
)
