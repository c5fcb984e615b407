package backends

import (
	"fmt"

	"github.com/advancedclimatesystems/gonnx"
	"gorgonia.org/tensor"

	"github.com/knights-analytics/gluedata/util/safeconv"
)

type GoModel struct {
	Model *gonnx.Model
}

func createGoModel(model *Model, onnxBytes []byte) error {
	goModel, err := gonnx.NewModelFromBytes(onnxBytes)
	if err != nil {
		return err
	}

	inputs, outputs, errLoad := loadInputOutputMetaGo(goModel)
	if errLoad != nil {
		return errLoad
	}
	model.GoModel = &GoModel{Model: goModel}
	model.InputsMeta = inputs
	model.OutputsMeta = outputs
	return nil
}

func loadInputOutputMetaGo(goModel *gonnx.Model) ([]InputOutputInfo, []InputOutputInfo, error) {
	var inputs, outputs []InputOutputInfo

	inputShapes := goModel.InputShapes()
	for _, name := range goModel.InputNames() {
		shape := inputShapes[name]
		dimensions := make([]int64, len(shape))
		for i, y := range shape {
			dimensions[i] = y.Size
		}
		inputs = append(inputs, InputOutputInfo{
			Name:       name,
			Dimensions: dimensions,
		})
	}
	outputShapes := goModel.OutputShapes()
	for _, name := range goModel.OutputNames() {
		shape := outputShapes[name]
		dimensions := make([]int64, len(shape))
		for i, y := range shape {
			dimensions[i] = y.Size
		}
		outputs = append(outputs, InputOutputInfo{
			Name:       name,
			Dimensions: dimensions,
		})
	}
	return inputs, outputs, nil
}

func forwardGo(model *Model, inputIDs, attentionMask, typeIDs [][]int64) ([][]float32, error) {
	batchSize := len(inputIDs)
	seqLength := len(inputIDs[0])

	inputMap := map[string]tensor.Tensor{}
	for _, inputMeta := range model.InputsMeta {
		backingSlice := make([]uint32, batchSize*seqLength)
		counter := 0
		for row := 0; row < batchSize; row++ {
			values, err := inputBackingValues(inputMeta.Name, row, inputIDs, attentionMask, typeIDs)
			if err != nil {
				return nil, err
			}
			for _, v := range values {
				backingSlice[counter] = safeconv.Int64ToUint32(v)
				counter++
			}
		}
		inputMap[inputMeta.Name] = tensor.New(
			tensor.Of(tensor.Uint32),
			tensor.WithShape(batchSize, seqLength),
			tensor.WithBacking(backingSlice),
		)
	}

	outputMap, err := model.GoModel.Model.Run(inputMap)
	if err != nil {
		return nil, err
	}
	outputTensor, ok := outputMap[model.OutputsMeta[0].Name]
	if !ok {
		return nil, fmt.Errorf("model did not return output %s", model.OutputsMeta[0].Name)
	}
	flat, ok := outputTensor.Data().([]float32)
	if !ok {
		return nil, fmt.Errorf("expected float32 output, got %T", outputTensor.Data())
	}
	return splitRows(flat, batchSize, model.OutputDim)
}

func splitRows(flat []float32, batchSize, outputDim int) ([][]float32, error) {
	if len(flat) != batchSize*outputDim {
		return nil, fmt.Errorf("output has %d values, expected %d", len(flat), batchSize*outputDim)
	}
	rows := make([][]float32, batchSize)
	for i := 0; i < batchSize; i++ {
		rows[i] = flat[i*outputDim : (i+1)*outputDim]
	}
	return rows, nil
}
