package maincmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/komumati1/GAsm/engine/gerr"
)

// trainingData is the --data file format: parallel arrays of input and
// target vectors, one pair per fitness evaluation.
type trainingData struct {
	Inputs  [][]float64 `json:"inputs"`
	Targets [][]float64 `json:"targets"`
}

func loadTrainingData(path string) (trainingData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return trainingData{}, fmt.Errorf("%w: reading training data: %v", gerr.ErrIoError, err)
	}
	var td trainingData
	if err := json.Unmarshal(raw, &td); err != nil {
		return trainingData{}, fmt.Errorf("%w: parsing training data: %v", gerr.ErrJsonFormat, err)
	}
	if len(td.Inputs) == 0 || len(td.Inputs) != len(td.Targets) {
		return trainingData{}, fmt.Errorf("%w: inputs and targets must be non-empty and equal length", gerr.ErrInvalidArgument)
	}
	return td, nil
}
