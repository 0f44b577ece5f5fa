package feed

import (
	"bytes"
	"encoding/csv"

	"github.com/nao1215/aiblockfeed/internal/model"
)

var defenderHeader = []string{"IndicatorType", "IndicatorValue", "Action", "Title", "Description", "Severity"}

// defenderEmitter writes a Microsoft Defender custom indicator import.
type defenderEmitter struct{}

// Defender writes defender_indicators.csv.
func Defender() Emitter {
	return defenderEmitter{}
}

// Name returns "defender".
func (defenderEmitter) Name() string { return "defender" }

// FileName returns the Defender indicator CSV name.
func (defenderEmitter) FileName() string { return "defender_indicators.csv" }

func (defenderEmitter) Render(set model.DomainSet) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	// Writes to a bytes.Buffer cannot fail.
	_ = w.Write(defenderHeader)
	for _, d := range set.Sorted() {
		_ = w.Write([]string{"Domain", d.String(), "Block", "AI Domain Block", d.String(), "Informational"})
	}
	w.Flush()

	return buf.Bytes()
}
