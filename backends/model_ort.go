package backends

import (
	"errors"

	ort "github.com/yalue/onnxruntime_go"
)

type ORTModel struct {
	Session *ort.DynamicAdvancedSession
}

func createORTModel(model *Model, onnxBytes []byte) error {
	if !ort.IsInitialized() {
		if model.ortLibraryPath != "" {
			ort.SetSharedLibraryPath(model.ortLibraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return err
		}
	}

	inputs, outputs, err := loadInputOutputMetaORT(onnxBytes)
	if err != nil {
		return err
	}

	var inputNames, outputNames []string
	for _, v := range inputs {
		inputNames = append(inputNames, v.Name)
	}
	for _, v := range outputs {
		outputNames = append(outputNames, v.Name)
	}
	session, errSession := ort.NewDynamicAdvancedSessionWithONNXData(
		onnxBytes,
		inputNames,
		outputNames,
		nil,
	)
	if errSession != nil {
		return errSession
	}

	model.ORTModel = &ORTModel{Session: session}
	model.InputsMeta = inputs
	model.OutputsMeta = outputs
	model.Destroy = func() error {
		return session.Destroy()
	}
	return nil
}

func loadInputOutputMetaORT(onnxBytes []byte) ([]InputOutputInfo, []InputOutputInfo, error) {
	inputs, outputs, err := ort.GetInputOutputInfoWithONNXData(onnxBytes)
	if err != nil {
		return nil, nil, err
	}
	return convertORTInputOutputs(inputs), convertORTInputOutputs(outputs), nil
}

func convertORTInputOutputs(infos []ort.InputOutputInfo) []InputOutputInfo {
	converted := make([]InputOutputInfo, len(infos))
	for i, info := range infos {
		converted[i] = InputOutputInfo{
			Name:       info.Name,
			Dimensions: Shape(info.Dimensions),
		}
	}
	return converted
}

func forwardORT(model *Model, inputIDs, attentionMask, typeIDs [][]int64) (scores [][]float32, err error) {
	batchSize := len(inputIDs)
	seqLength := len(inputIDs[0])

	inputTensors := make([]ort.Value, len(model.InputsMeta))
	defer func() {
		for _, inputTensor := range inputTensors {
			if inputTensor != nil {
				err = errors.Join(err, inputTensor.Destroy())
			}
		}
	}()

	for i, inputMeta := range model.InputsMeta {
		backingSlice := make([]int64, batchSize*seqLength)
		counter := 0
		for row := 0; row < batchSize; row++ {
			values, valuesErr := inputBackingValues(inputMeta.Name, row, inputIDs, attentionMask, typeIDs)
			if valuesErr != nil {
				return nil, valuesErr
			}
			for _, v := range values {
				backingSlice[counter] = v
				counter++
			}
		}
		inputTensor, tensorErr := ort.NewTensor(ort.NewShape(int64(batchSize), int64(seqLength)), backingSlice)
		if tensorErr != nil {
			return nil, tensorErr
		}
		inputTensors[i] = inputTensor
	}

	outputTensor, errTensor := ort.NewEmptyTensor[float32](ort.NewShape(int64(batchSize), int64(model.OutputDim)))
	if errTensor != nil {
		return nil, errTensor
	}
	defer func() {
		err = errors.Join(err, outputTensor.Destroy())
	}()

	if errRun := model.ORTModel.Session.Run(inputTensors, []ort.Value{outputTensor}); errRun != nil {
		return nil, errRun
	}

	flat := outputTensor.GetData()
	rows, errSplit := splitRows(flat, batchSize, model.OutputDim)
	if errSplit != nil {
		return nil, errSplit
	}
	// copy out before the tensor is destroyed
	scores = make([][]float32, len(rows))
	for i, row := range rows {
		scores[i] = append([]float32(nil), row...)
	}
	return scores, err
}
