package classifier

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"skincare-recommender/internal/infrastructure/config"
	"skincare-recommender/internal/pkg/common"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
)

const (
	// OutputLabel 模型直接輸出 int64 的 0/1 標籤
	OutputLabel = "label"
	// OutputScore 模型輸出 float 分數，依門檻轉為標籤
	OutputScore = "score"
)

// ortEnv ONNX Runtime 全域環境，整個程序只初始化一次
var ortEnv struct {
	once sync.Once
	err  error
}

func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// ONNXClassifier 以本地 ONNX 模型執行多標籤分類
type ONNXClassifier struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	inputType  ort.TensorElementDataType
	outputName string
	outputKind string
	threshold  float64
	shape      Shape

	mu     sync.RWMutex
	closed bool
}

// NewONNXClassifier 載入模型並檢查輸入輸出張量
func NewONNXClassifier(cfg config.ONNXConfig) (*ONNXClassifier, error) {
	libPath := cfg.LibraryPath
	if libPath == "" {
		libPath = filepath.Join(filepath.Dir(cfg.ModelPath), "libonnxruntime.so")
	}
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("onnx: expected a single input tensor, got %d", len(inputs))
	}
	input := inputs[0]
	if input.DataType != ort.TensorElementDataTypeFloat && input.DataType != ort.TensorElementDataTypeDouble {
		return nil, fmt.Errorf("onnx: input %q must be float or double, got %v", input.Name, input.DataType)
	}
	if len(input.Dimensions) != 2 {
		return nil, fmt.Errorf("onnx: expected 2D input tensor, got %v", input.Dimensions)
	}

	output, err := selectOutput(outputs, cfg.OutputName, cfg.OutputKind)
	if err != nil {
		return nil, err
	}
	if len(output.Dimensions) != 2 || output.Dimensions[1] <= 0 {
		return nil, fmt.Errorf("onnx: output %q must be [batch, labels] with a fixed label count, got %v",
			output.Name, output.Dimensions)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	threads := cfg.Threads
	if threads <= 0 {
		threads = 1
	}
	if err := opts.SetIntraOpNumThreads(threads); err != nil {
		return nil, fmt.Errorf("onnx: failed to set threads: %w", err)
	}
	if err := opts.SetInterOpNumThreads(1); err != nil {
		return nil, fmt.Errorf("onnx: failed to set threads: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{input.Name},
		[]string{output.Name},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	c := &ONNXClassifier{
		session:    session,
		inputName:  input.Name,
		inputType:  input.DataType,
		outputName: output.Name,
		outputKind: cfg.OutputKind,
		threshold:  cfg.Threshold,
		shape: Shape{
			Inputs:  dimOrZero(input.Dimensions[1]),
			Outputs: int(output.Dimensions[1]),
		},
	}

	common.LogInfo("ONNX 模型已載入",
		zap.String("model", cfg.ModelPath),
		zap.String("input", c.inputName),
		zap.String("output", c.outputName),
		zap.String("output_kind", c.outputKind),
		zap.Int("features", c.shape.Inputs),
		zap.Int("labels", c.shape.Outputs),
	)
	return c, nil
}

// selectOutput 依名稱或輸出類型挑選輸出張量
func selectOutput(outputs []ort.InputOutputInfo, name, kind string) (ort.InputOutputInfo, error) {
	want := ort.TensorElementDataType(ort.TensorElementDataTypeInt64)
	if kind == OutputScore {
		want = ort.TensorElementDataTypeFloat
	}

	for _, o := range outputs {
		if name != "" && o.Name != name {
			continue
		}
		if o.OrtValueType != ort.ONNXTypeTensor {
			if name != "" {
				return ort.InputOutputInfo{}, fmt.Errorf("onnx: output %q is not a tensor", name)
			}
			continue
		}
		if o.DataType != want {
			if name != "" {
				return ort.InputOutputInfo{}, fmt.Errorf("onnx: output %q has type %v, want %v for kind %q",
					name, o.DataType, want, kind)
			}
			continue
		}
		return o, nil
	}
	if name != "" {
		return ort.InputOutputInfo{}, fmt.Errorf("onnx: model has no output %q", name)
	}
	return ort.InputOutputInfo{}, fmt.Errorf("onnx: model has no %v tensor output for kind %q", want, kind)
}

func dimOrZero(d int64) int {
	if d <= 0 {
		return 0
	}
	return int(d)
}

// Shape 模型的輸入輸出維度
func (c *ONNXClassifier) Shape() Shape {
	return c.shape
}

// Predict 執行推論；ONNX Runtime 的 session 可並行呼叫 Run
func (c *ONNXClassifier) Predict(ctx context.Context, batch [][]float64) ([][]int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, width, err := batchDims(batch, c.shape.Inputs)
	if err != nil {
		return nil, err
	}

	inShape := ort.NewShape(int64(rows), int64(width))
	var input ort.Value
	if c.inputType == ort.TensorElementDataTypeDouble {
		t, err := ort.NewTensor(inShape, flatten(batch, width))
		if err != nil {
			return nil, fmt.Errorf("onnx: failed to create input tensor: %w", err)
		}
		defer t.Destroy()
		input = t
	} else {
		t, err := ort.NewTensor(inShape, flatten32(batch, width))
		if err != nil {
			return nil, fmt.Errorf("onnx: failed to create input tensor: %w", err)
		}
		defer t.Destroy()
		input = t
	}

	outShape := ort.NewShape(int64(rows), int64(c.shape.Outputs))
	if c.outputKind == OutputScore {
		out, err := ort.NewEmptyTensor[float32](outShape)
		if err != nil {
			return nil, fmt.Errorf("onnx: failed to create output tensor: %w", err)
		}
		defer out.Destroy()
		if err := c.session.Run([]ort.Value{input}, []ort.Value{out}); err != nil {
			return nil, fmt.Errorf("onnx: inference failed: %w", err)
		}
		return thresholdScores(out.GetData(), rows, c.shape.Outputs, c.threshold), nil
	}

	out, err := ort.NewEmptyTensor[int64](outShape)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer out.Destroy()
	if err := c.session.Run([]ort.Value{input}, []ort.Value{out}); err != nil {
		return nil, fmt.Errorf("onnx: inference failed: %w", err)
	}
	return splitLabels(out.GetData(), rows, c.shape.Outputs), nil
}

// Close 釋放 session
func (c *ONNXClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.session.Destroy()
}

// batchDims 檢查批次非空且每列長度一致；want 為 0 時不限制長度
func batchDims(batch [][]float64, want int) (rows, width int, err error) {
	if len(batch) == 0 {
		return 0, 0, ErrEmptyBatch
	}
	width = len(batch[0])
	if width == 0 {
		return 0, 0, fmt.Errorf("empty feature row")
	}
	for i, row := range batch {
		if len(row) != width {
			return 0, 0, fmt.Errorf("row %d has %d features, want %d", i, len(row), width)
		}
	}
	if want > 0 && width != want {
		return 0, 0, fmt.Errorf("model expects %d features, got %d", want, width)
	}
	return len(batch), width, nil
}

func flatten(batch [][]float64, width int) []float64 {
	out := make([]float64, 0, len(batch)*width)
	for _, row := range batch {
		out = append(out, row...)
	}
	return out
}

func flatten32(batch [][]float64, width int) []float32 {
	out := make([]float32, 0, len(batch)*width)
	for _, row := range batch {
		for _, v := range row {
			out = append(out, float32(v))
		}
	}
	return out
}

// splitLabels 將扁平的 [rows*labels] 輸出切成每列一個標籤向量
func splitLabels(data []int64, rows, labels int) [][]int {
	out := make([][]int, rows)
	for r := 0; r < rows; r++ {
		row := make([]int, labels)
		for i := 0; i < labels; i++ {
			row[i] = int(data[r*labels+i])
		}
		out[r] = row
	}
	return out
}

// thresholdScores 分數大於等於門檻視為 1
func thresholdScores(data []float32, rows, labels int, threshold float64) [][]int {
	out := make([][]int, rows)
	for r := 0; r < rows; r++ {
		row := make([]int, labels)
		for i := 0; i < labels; i++ {
			if float64(data[r*labels+i]) >= threshold {
				row[i] = 1
			}
		}
		out[r] = row
	}
	return out
}
