package predict

import (
	"encoding/csv"
	"io"
	"strconv"
)

// CSVHeader is the header row of exported predictions.
var CSVHeader = []string{"sequence name", "site", "amino acid", "probability"}

// WriteCSV writes one row per site prediction, probabilities to 4 decimals.
func WriteCSV(w io.Writer, s SequencePredictions) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, sp := range s.SequencePredictions {
		for _, p := range sp.SitePredictions {
			row := []string{
				sp.SequenceName,
				strconv.Itoa(p.Site),
				p.AminoAcid,
				strconv.FormatFloat(p.Probability, 'f', 4, 64),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
