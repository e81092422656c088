package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/leaguedraw/internal"
)

// ReadCsvFile loads word rows laid out as
// category,id,word,image[,parent[,key]]. A header row starting with
// "category" is skipped.
func ReadCsvFile(filePath string) ([]internal.WordData, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("unable to read input file %s: %w", filePath, err)
	}
	defer f.Close()

	return ReadCsv(f)
}

func ReadCsv(r io.Reader) ([]internal.WordData, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1

	var words []internal.WordData
	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to parse words csv: %w", err)
		}

		if len(record) < 4 {
			log.Warn().Strs("record", record).Msg("[ReadCsv] skipping invalid record")
			continue
		}
		if strings.EqualFold(strings.TrimSpace(record[0]), "category") {
			continue
		}

		word := internal.WordData{
			Category: strings.TrimSpace(record[0]),
			Id:       strings.TrimSpace(record[1]),
			Word:     strings.TrimSpace(record[2]),
			Image:    strings.TrimSpace(record[3]),
		}
		if len(record) > 4 {
			word.Parent = strings.TrimSpace(record[4])
		}
		if len(record) > 5 {
			word.Key = strings.TrimSpace(record[5])
		}

		words = append(words, word)
	}

	return words, nil
}
