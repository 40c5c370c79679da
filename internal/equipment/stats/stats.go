package stats

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/shandysiswandi/chemviz/internal/equipment/entity"
)

// Column names read by Compute. Matching is exact after trimming the header.
const (
	ColumnPressure    = "Pressure"
	ColumnTemperature = "Temperature"
	ColumnType        = "Type"
)

//nolint:gochecknoglobals // read-only lookup tables
var (
	utf8BOM       = []byte{0xEF, 0xBB, 0xBF}
	missingValues = []string{"", "NA", "NaN", "null", "<nil>"}
)

// Compute reads delimited text with a header row and returns its summary
// statistics. It never returns partial results: on failure the error is a
// *ParseError and the Statistics value is zero.
func Compute(r io.Reader) (entity.Statistics, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return entity.Statistics{}, &ParseError{Msg: "failed to read input", Err: err}
	}

	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		return entity.Statistics{}, &ParseError{Msg: "input is not valid UTF-8 text"}
	}

	tbl, err := readTable(raw)
	if err != nil {
		return entity.Statistics{}, err
	}

	result := entity.Statistics{
		TotalCount:  len(tbl.rows),
		ChartLabels: []string{},
		ChartData:   []int{},
	}
	if len(tbl.rows) == 0 {
		return result, nil
	}

	records := make([][]string, 0, len(tbl.rows)+1)
	records = append(records, tbl.header)
	records = append(records, tbl.rows...)

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingValues),
		dataframe.WithTypes(map[string]series.Type{ColumnType: series.String}),
	)
	if df.Err != nil {
		return entity.Statistics{}, &ParseError{Msg: "failed to load rows", Err: df.Err}
	}

	if result.AvgPressure, err = columnMean(df, ColumnPressure, tbl.lines); err != nil {
		return entity.Statistics{}, err
	}
	if result.AvgTemp, err = columnMean(df, ColumnTemperature, tbl.lines); err != nil {
		return entity.Statistics{}, err
	}

	result.ChartLabels, result.ChartData = distribution(df, ColumnType)

	return result, nil
}

type table struct {
	header []string
	rows   [][]string
	lines  []int // source line of each row, for error messages
}

func readTable(raw []byte) (table, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return table{}, &ParseError{Msg: "no columns to parse from file"}
	}
	if err != nil {
		return table{}, fromCSVError(err)
	}

	tbl := table{header: normalizeHeader(header)}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return table{}, fromCSVError(err)
		}

		line, _ := reader.FieldPos(0)
		if len(record) > len(tbl.header) {
			return table{}, &ParseError{
				Line: line,
				Msg:  fmt.Sprintf("expected %d fields, saw %d", len(tbl.header), len(record)),
			}
		}

		// short rows are padded with missing values
		row := make([]string, len(tbl.header))
		for i, field := range record {
			row[i] = strings.TrimSpace(field)
		}

		tbl.rows = append(tbl.rows, row)
		tbl.lines = append(tbl.lines, line)
	}

	return tbl, nil
}

// normalizeHeader trims names and makes them unique so the dataframe does not
// rename columns on its own: blanks become "Unnamed: <i>", repeats get ".<n>".
func normalizeHeader(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	next := make(map[string]int, len(header))

	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}

		base := name
		for used[name] {
			next[base]++
			name = base + "." + strconv.Itoa(next[base])
		}
		used[name] = true

		names[i] = name
	}

	return names
}

func columnMean(df dataframe.DataFrame, name string, lines []int) (float64, error) {
	if !slices.Contains(df.Names(), name) {
		return 0, nil
	}

	col := df.Col(name)
	if col.Type() != series.Int && col.Type() != series.Float {
		return 0, nonNumeric(col, name, lines)
	}

	var sum float64
	var n int
	for i, v := range col.Float() {
		if math.IsNaN(v) {
			continue
		}
		if math.IsInf(v, 0) {
			return 0, &ParseError{Line: lineAt(lines, i), Msg: fmt.Sprintf("column %q holds a non-finite value", name)}
		}
		sum += v
		n++
	}

	if n == 0 {
		return 0, nil
	}

	return round2(sum / float64(n)), nil
}

// nonNumeric reports the first cell that keeps a column from being numeric.
// A column whose cells are all missing is detected as text and averages to 0.
func nonNumeric(col series.Series, name string, lines []int) error {
	for i := 0; i < col.Len(); i++ {
		elem := col.Elem(i)
		if elem.IsNA() {
			continue
		}
		value := elem.String()
		_, err := strconv.ParseFloat(value, 64)
		if err == nil {
			continue
		}
		msg := fmt.Sprintf("column %q has non-numeric value %q", name, value)
		if errors.Is(err, strconv.ErrRange) {
			msg = fmt.Sprintf("column %q has out of range value %q", name, value)
		}
		return &ParseError{Line: lineAt(lines, i), Msg: msg}
	}

	return nil
}

func distribution(df dataframe.DataFrame, name string) ([]string, []int) {
	labels := []string{}
	counts := []int{}

	if !slices.Contains(df.Names(), name) {
		return labels, counts
	}

	index := make(map[string]int)
	col := df.Col(name)
	for i := 0; i < col.Len(); i++ {
		elem := col.Elem(i)
		if elem.IsNA() {
			continue
		}

		label := elem.String()
		pos, ok := index[label]
		if !ok {
			pos = len(labels)
			index[label] = pos
			labels = append(labels, label)
			counts = append(counts, 0)
		}
		counts[pos]++
	}

	return labels, counts
}

func lineAt(lines []int, i int) int {
	if i < 0 || i >= len(lines) {
		return 0
	}
	return lines[i]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
