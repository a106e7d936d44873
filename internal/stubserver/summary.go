package stubserver

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chemviz/chemviz/internal/model"
)

// Summarize computes the per-upload aggregate from one equipment CSV:
// row count, column means for Flowrate/Pressure/Temperature, and value
// counts of the Type column. A metric whose column is missing, or contains
// no parseable values, is reported as absent rather than zero.
func Summarize(r io.Reader) (model.Summary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.Summary{}, errors.New("csv is empty")
		}
		return model.Summary{}, fmt.Errorf("read csv header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}

	type meanAcc struct {
		sum   float64
		count int
	}
	means := map[string]*meanAcc{
		"Flowrate":    {},
		"Pressure":    {},
		"Temperature": {},
	}
	typeIdx, hasType := colIdx["Type"]

	var rows float64
	var distribution map[string]int
	if hasType {
		distribution = make(map[string]int)
	}

	for {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return model.Summary{}, fmt.Errorf("read csv row: %w", err)
		}
		rows++

		for col, acc := range means {
			idx, ok := colIdx[col]
			if !ok || idx >= len(row) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
			if err != nil {
				// Blank or non-numeric cells are skipped, not zeroed.
				continue
			}
			acc.sum += v
			acc.count++
		}

		if hasType && typeIdx < len(row) {
			if typ := strings.TrimSpace(row[typeIdx]); typ != "" {
				distribution[typ]++
			}
		}
	}

	summary := model.Summary{
		TotalEquipment:   model.Float(rows),
		TypeDistribution: distribution,
	}
	if acc := means["Flowrate"]; acc.count > 0 {
		summary.AvgFlowrate = model.Float(acc.sum / float64(acc.count))
	}
	if acc := means["Pressure"]; acc.count > 0 {
		summary.AvgPressure = model.Float(acc.sum / float64(acc.count))
	}
	if acc := means["Temperature"]; acc.count > 0 {
		summary.AvgTemperature = model.Float(acc.sum / float64(acc.count))
	}
	return summary, nil
}
