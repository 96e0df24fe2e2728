package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
)

// NormalsParser parses 12-month degree-day CSV files.
//
// Expected format:
//
//	month,hdd,cdd
//	1,1100,0
type NormalsParser struct{}

// Parse requires every month 1-12 exactly once.
func (NormalsParser) Parse(r io.Reader) (model.MonthlyNormals, error) {
	var normals model.MonthlyNormals
	cr := newReader(r)
	if err := readHeader(cr, []string{"month", "hdd", "cdd"}); err != nil {
		return normals, err
	}

	var seen [12]bool
	err := eachRecord(cr, func(record []string, lineNum int) error {
		if len(record) < 3 {
			return fmt.Errorf("line %d: expected 3 fields, got %d", lineNum, len(record))
		}
		m, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil || !model.ValidMonth(time.Month(m)) {
			return fmt.Errorf("line %d: bad month %q: %w", lineNum, record[0], model.ErrInvalidClimateData)
		}
		if seen[m-1] {
			return fmt.Errorf("line %d: duplicate month %d: %w", lineNum, m, model.ErrInvalidClimateData)
		}
		seen[m-1] = true

		hdd, err := parseFinite(strings.TrimSpace(record[1]))
		if err != nil {
			return fmt.Errorf("line %d: hdd: %w", lineNum, err)
		}
		cdd, err := parseFinite(strings.TrimSpace(record[2]))
		if err != nil {
			return fmt.Errorf("line %d: cdd: %w", lineNum, err)
		}
		normals[m-1] = model.DegreeDays{HDD: hdd, CDD: cdd}
		return nil
	})
	if err != nil {
		return normals, err
	}

	if err := checkComplete(seen); err != nil {
		return normals, err
	}
	return normals, normals.Validate()
}

func checkComplete(seen [12]bool) error {
	for i, ok := range seen {
		if !ok {
			return fmt.Errorf("missing %s: %w", time.Month(i+1), model.ErrInvalidClimateData)
		}
	}
	return nil
}

// yamlNormals is the YAML layout:
//
//	months:
//	  - {month: 1, hdd: 1100, cdd: 0}
type yamlNormals struct {
	Months []struct {
		Month int     `yaml:"month"`
		HDD   float64 `yaml:"hdd"`
		CDD   float64 `yaml:"cdd"`
	} `yaml:"months"`
}

// LoadNormalsYAML decodes a YAML normals document.
func LoadNormalsYAML(r io.Reader) (model.MonthlyNormals, error) {
	var normals model.MonthlyNormals
	var doc yamlNormals
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return normals, fmt.Errorf("decoding normals YAML: %w", err)
	}

	var seen [12]bool
	for i, row := range doc.Months {
		if !model.ValidMonth(time.Month(row.Month)) {
			return normals, fmt.Errorf("entry %d: bad month %d: %w", i, row.Month, model.ErrInvalidClimateData)
		}
		if seen[row.Month-1] {
			return normals, fmt.Errorf("entry %d: duplicate month %d: %w", i, row.Month, model.ErrInvalidClimateData)
		}
		seen[row.Month-1] = true
		normals[row.Month-1] = model.DegreeDays{HDD: row.HDD, CDD: row.CDD}
	}
	if err := checkComplete(seen); err != nil {
		return normals, err
	}
	return normals, normals.Validate()
}

// FileNormals reads a normals file, picking the format from its extension.
type FileNormals struct {
	Path string
}

func (f FileNormals) Normals(ctx context.Context) (model.MonthlyNormals, error) {
	if err := ctx.Err(); err != nil {
		return model.MonthlyNormals{}, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return model.MonthlyNormals{}, fmt.Errorf("opening normals: %w", err)
	}
	defer file.Close()

	var normals model.MonthlyNormals
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".yaml", ".yml":
		normals, err = LoadNormalsYAML(file)
	default:
		normals, err = NormalsParser{}.Parse(file)
	}
	if err != nil {
		return model.MonthlyNormals{}, fmt.Errorf("%s: %w", f.Path, err)
	}
	return normals, nil
}
