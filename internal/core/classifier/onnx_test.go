package classifier

import (
	"context"
	"os"
	"testing"

	"skincare-recommender/internal/infrastructure/config"

	ort "github.com/yalue/onnxruntime_go"
)

const testModelPath = "../../../models/final_model.onnx"

func skipIfNoModel(t *testing.T) {
	t.Helper()
	if _, err := os.Stat(testModelPath); os.IsNotExist(err) {
		t.Skip("model file not found; export the trained classifier to models/final_model.onnx first")
	}
}

func TestONNXClassifier(t *testing.T) {
	skipIfNoModel(t)

	c, err := NewONNXClassifier(config.ONNXConfig{
		ModelPath:   testModelPath,
		LibraryPath: os.Getenv("ONNXRUNTIME_LIB"),
		OutputKind:  OutputLabel,
		Threshold:   0.5,
		Threads:     1,
	})
	if err != nil {
		t.Fatalf("failed to load ONNX model: %v", err)
	}
	defer c.Close()

	shape := c.Shape()
	if shape.Outputs <= 0 {
		t.Fatalf("expected positive label count, got %d", shape.Outputs)
	}
	width := shape.Inputs
	if width == 0 {
		width = 15
	}

	rows, err := c.Predict(context.Background(), [][]float64{make([]float64, width)})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(rows) != 1 || len(rows[0]) != shape.Outputs {
		t.Fatalf("unexpected output %v", rows)
	}
	for _, v := range rows[0] {
		if v != 0 && v != 1 {
			t.Errorf("label %d is not binary", v)
		}
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := c.Predict(context.Background(), [][]float64{make([]float64, width)}); err != ErrClosed {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
}

func TestSelectOutput(t *testing.T) {
	label := ort.InputOutputInfo{Name: "output_label", OrtValueType: ort.ONNXTypeTensor, DataType: ort.TensorElementDataTypeInt64}
	probs := ort.InputOutputInfo{Name: "output_probability", OrtValueType: ort.ONNXTypeSequence}
	score := ort.InputOutputInfo{Name: "scores", OrtValueType: ort.ONNXTypeTensor, DataType: ort.TensorElementDataTypeFloat}
	outputs := []ort.InputOutputInfo{probs, label, score}

	tests := []struct {
		name    string
		outName string
		kind    string
		want    string
		wantErr bool
	}{
		{"label by type", "", OutputLabel, "output_label", false},
		{"score by type", "", OutputScore, "scores", false},
		{"label by name", "output_label", OutputLabel, "output_label", false},
		{"name with wrong type", "scores", OutputLabel, "", true},
		{"name not a tensor", "output_probability", OutputLabel, "", true},
		{"unknown name", "missing", OutputLabel, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectOutput(outputs, tt.outName, tt.kind)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got.Name)
				}
				return
			}
			if err != nil {
				t.Fatalf("selectOutput: %v", err)
			}
			if got.Name != tt.want {
				t.Errorf("selected %q, want %q", got.Name, tt.want)
			}
		})
	}

	if _, err := selectOutput([]ort.InputOutputInfo{probs}, "", OutputScore); err == nil {
		t.Error("expected error when no tensor output matches")
	}
}
