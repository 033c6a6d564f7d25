package keygen

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// Dataset is a synthetic benchmark input: a header row and data rows whose
// first column is the key.
//
// Columns: name, mpg, cylinders, model_year
type Dataset struct {
	Headers []string
	Rows    [][]string

	// Keys is the first column of Rows, kept for tests.
	Keys []string
}

type Config struct {
	Rows int
	Seed int64

	// DuplicateRate is the probability that a row reuses an earlier key, so
	// the hash table sees repeated inserts.
	DuplicateRate float64
}

func DefaultConfig() Config {
	return Config{
		Rows:          10000,
		Seed:          42,
		DuplicateRate: 0.05,
	}
}

var (
	makes  = []string{"amc", "buick", "chevrolet", "datsun", "dodge", "ford", "honda", "mazda", "peugeot", "plymouth", "pontiac", "toyota", "volkswagen", "volvo"}
	models = []string{"hornet", "skylark", "malibu", "510", "dart", "pinto", "civic", "rx-4", "504", "satellite", "catalina", "corona", "rabbit", "144ea"}
	trims  = []string{"", " custom", " deluxe", " wagon", " sw", " gl", " sport", " (sw)"}
)

func Generate(cfg Config) (*Dataset, error) {
	if cfg.Rows <= 0 {
		return nil, fmt.Errorf("rows must be > 0")
	}
	if cfg.DuplicateRate < 0 || cfg.DuplicateRate >= 1 {
		return nil, fmt.Errorf("duplicate rate must be in [0, 1)")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	ds := &Dataset{
		Headers: []string{"name", "mpg", "cylinders", "model_year"},
		Rows:    make([][]string, 0, cfg.Rows),
		Keys:    make([]string, 0, cfg.Rows),
	}

	for i := 0; i < cfg.Rows; i++ {
		var name string
		if i > 0 && rng.Float64() < cfg.DuplicateRate {
			name = ds.Keys[rng.Intn(len(ds.Keys))]
		} else {
			// The row index suffix keeps fresh names unique however many rows are asked for.
			name = fmt.Sprintf("%s %s%s #%d",
				makes[rng.Intn(len(makes))],
				models[rng.Intn(len(models))],
				trims[rng.Intn(len(trims))],
				i)
		}

		cylinders := []int{4, 6, 8}[rng.Intn(3)]
		mpg := 9 + rng.Float64()*38
		year := 70 + rng.Intn(13)

		ds.Keys = append(ds.Keys, name)
		ds.Rows = append(ds.Rows, []string{
			name,
			strconv.FormatFloat(mpg, 'f', 1, 64),
			strconv.Itoa(cylinders),
			strconv.Itoa(year),
		})
	}

	return ds, nil
}

func WriteCSV(path string, ds *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(ds.Headers); err != nil {
		return err
	}
	for _, row := range ds.Rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func WriteXLSX(path string, ds *Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	// Header row
	for i, h := range ds.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	// Data rows
	for r := 0; r < len(ds.Rows); r++ {
		rowIdx := r + 2
		for c, v := range ds.Rows[r] {
			cell, _ := excelize.CoordinatesToCellName(c+1, rowIdx)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}
