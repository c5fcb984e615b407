package backends

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/knights-analytics/gluedata/util/fileutil"
)

// Model is a pretrained sequence classifier loaded from an exported onnx
// checkpoint. Two runtimes are supported: the pure go onnx interpreter and
// onnxruntime through the shared library, selected by the Runtime string.
type Model struct {
	Path           string
	OnnxFilename   string
	OnnxPath       string
	Runtime        string
	IDLabelMap     map[int]string
	InputsMeta     []InputOutputInfo
	OutputsMeta    []InputOutputInfo
	OutputDim      int
	GoModel        *GoModel
	ORTModel       *ORTModel
	Destroy        func() error
	ortLibraryPath string

	// Training and PastIndex mirror the trainer settings of the exporting
	// framework. The inference helper refuses models with Training set or a
	// non-negative PastIndex.
	Training  bool
	PastIndex int
}

type InputOutputInfo struct {
	// The name of the input or output
	Name string
	// The input or output's dimensions, if it's a tensor.
	Dimensions Shape
}

type Shape []int64

func (s Shape) String() string {
	return fmt.Sprintf("%v", []int64(s))
}

// NewShape Returns a Shape, with the given dimensions.
func NewShape(dimensions ...int64) Shape {
	return dimensions
}

type modelConfig struct {
	IDLabelMap map[string]string `json:"id2label"`
}

type ModelOption func(m *Model)

// WithRuntime selects the model runtime, "GO" (default) or "ORT".
func WithRuntime(runtime string) ModelOption {
	return func(m *Model) {
		m.Runtime = runtime
	}
}

// WithOnnxLibraryPath (ORT only) sets the path of the onnxruntime shared
// library to load.
func WithOnnxLibraryPath(path string) ModelOption {
	return func(m *Model) {
		m.ortLibraryPath = path
	}
}

// LoadModel loads a classifier from path. The path must hold a config.json
// with an id2label map and exactly one .onnx file, unless onnxFilename picks
// one of several.
func LoadModel(path string, onnxFilename string, opts ...ModelOption) (*Model, error) {
	model := &Model{
		Path:         path,
		OnnxFilename: onnxFilename,
		Runtime:      "GO",
		PastIndex:    -1,
		Destroy: func() error {
			return nil
		},
	}
	for _, opt := range opts {
		opt(model)
	}

	if err := loadModelConfig(model); err != nil {
		return nil, err
	}
	if err := resolveOnnxPath(model); err != nil {
		return nil, err
	}
	onnxBytes, err := fileutil.ReadFileBytes(model.OnnxPath)
	if err != nil {
		return nil, err
	}

	switch model.Runtime {
	case "GO":
		err = createGoModel(model, onnxBytes)
	case "ORT":
		err = createORTModel(model, onnxBytes)
	default:
		err = fmt.Errorf("model runtime %s not recognized", model.Runtime)
	}
	if err != nil {
		return nil, err
	}

	if len(model.OutputsMeta) == 0 {
		return nil, fmt.Errorf("model at %s declares no outputs", path)
	}
	outputDims := model.OutputsMeta[0].Dimensions
	model.OutputDim = int(outputDims[len(outputDims)-1])
	if model.OutputDim <= 0 {
		return nil, fmt.Errorf("model output dimension must be greater than zero, got %d", model.OutputDim)
	}
	if len(model.IDLabelMap) != model.OutputDim {
		return nil, fmt.Errorf("length of id2label map does not match model output dimension")
	}
	return model, nil
}

func loadModelConfig(model *Model) error {
	configBytes, err := fileutil.ReadFileBytes(fileutil.PathJoinSafe(model.Path, "config.json"))
	if err != nil {
		return err
	}
	var config modelConfig
	if err := jsoniter.Unmarshal(configBytes, &config); err != nil {
		return err
	}
	if len(config.IDLabelMap) == 0 {
		return fmt.Errorf("config.json at %s has no id2label map", model.Path)
	}
	model.IDLabelMap = map[int]string{}
	for key, label := range config.IDLabelMap {
		index, convErr := strconv.Atoi(key)
		if convErr != nil {
			return fmt.Errorf("id2label key %q is not an integer: %w", key, convErr)
		}
		model.IDLabelMap[index] = label
	}
	return nil
}

func resolveOnnxPath(model *Model) error {
	onnxFiles, err := getOnnxFiles(model.Path)
	if err != nil {
		return err
	}
	if len(onnxFiles) == 0 {
		return fmt.Errorf("no .onnx file detected at %s", model.Path)
	}
	if len(onnxFiles) > 1 {
		if model.OnnxFilename == "" {
			return fmt.Errorf("multiple .onnx files detected at %s and no OnnxFilename specified", model.Path)
		}
		for i := range onnxFiles {
			if onnxFiles[i][1] == model.OnnxFilename {
				model.OnnxPath = fileutil.PathJoinSafe(onnxFiles[i]...)
				return nil
			}
		}
		return fmt.Errorf("file %s not found at %s", model.OnnxFilename, model.Path)
	}
	model.OnnxPath = fileutil.PathJoinSafe(onnxFiles[0]...)
	return nil
}

func getOnnxFiles(path string) ([][]string, error) {
	var onnxFiles [][]string
	walker := func(_ context.Context, _ string, parent string, info os.FileInfo, _ io.Reader) (toContinue bool, err error) {
		if strings.HasSuffix(info.Name(), ".onnx") {
			onnxFiles = append(onnxFiles, []string{fileutil.PathJoinSafe(path, parent), info.Name()})
		}
		return true, nil
	}
	err := fileutil.Walk(context.Background(), path, walker)
	return onnxFiles, err
}

// TrainingMode reports whether the model is flagged as being in training mode.
func (m *Model) TrainingMode() bool {
	return m.Training
}

// PastStateIndex returns the configured "past" state index, -1 when disabled.
func (m *Model) PastStateIndex() int {
	return m.PastIndex
}

// Forward runs the classifier on a batch of fixed-length encoded sequences
// and returns the per-class scores, one row per instance.
func (m *Model) Forward(inputIDs, attentionMask, typeIDs [][]int64) ([][]float32, error) {
	if len(inputIDs) == 0 {
		return nil, fmt.Errorf("empty batch")
	}
	switch m.Runtime {
	case "GO":
		return forwardGo(m, inputIDs, attentionMask, typeIDs)
	case "ORT":
		return forwardORT(m, inputIDs, attentionMask, typeIDs)
	}
	return nil, fmt.Errorf("model runtime %s not recognized", m.Runtime)
}

func inputBackingValues(name string, row int, inputIDs, attentionMask, typeIDs [][]int64) ([]int64, error) {
	switch name {
	case "input_ids":
		return inputIDs[row], nil
	case "attention_mask":
		return attentionMask[row], nil
	case "token_type_ids":
		return typeIDs[row], nil
	}
	return nil, fmt.Errorf("input %s not recognized", name)
}
