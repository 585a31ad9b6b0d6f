// Package iotable reads and writes the tabular structures of the
// reconciliation run: occurrence record tables on the way in,
// consensus lineage tables on the way out. Files are tab-separated
// with a header row; a ".gz" suffix switches on transparent gzip.
//
// The output column contract - the BIN identifier column followed by
// one column per configured rank, in canonical order - is the stable
// interface surface for downstream format writers.
package iotable

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/gnames/gnbintax/pkg/lineage"
	"github.com/gnames/gnbintax/pkg/rank"
)

// Column names with fixed meaning in input tables.
const (
	ColBinURI   = "bin_uri"
	ColRecordID = "record_id"
	ColWeight   = "n"
)

// nullValues are the strings treated as a missing label.
var nullValues = map[string]struct{}{
	"":     {},
	"None": {},
	"NA":   {},
}

// ReadRecords loads an occurrence record table. Required columns: the
// BIN identifier and one column per configured rank. Optional columns:
// a record identifier and a numeric vote weight (defaults to 1).
// Unknown columns are ignored.
func ReadRecords(path string, ranks rank.Set) (*lineage.Table, error) {
	r, closer, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer closer()

	header, err := r.Read()
	if err != nil {
		return nil, NewTableReadError(path, err)
	}
	cols, err := mapColumns(path, header, ranks)
	if err != nil {
		return nil, err
	}

	table := &lineage.Table{Ranks: ranks}
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewTableReadError(path, err)
		}
		line++

		rec := lineage.Record{
			BIN:    cellAt(row, cols.bin),
			Labels: make([]string, len(ranks)),
			Weight: 1,
		}
		if cols.id >= 0 {
			rec.ID = cellAt(row, cols.id)
		}
		if rec.ID == "" {
			rec.ID = fmt.Sprintf("row-%d", line)
		}
		if cols.weight >= 0 {
			w := cellAt(row, cols.weight)
			if w != "" {
				n, err := strconv.Atoi(w)
				if err != nil || n < 1 {
					return nil, NewTableValueError(path, line, ColWeight, w)
				}
				rec.Weight = n
			}
		}
		for i, c := range cols.ranks {
			rec.Labels[i] = cellAt(row, c)
		}
		table.Records = append(table.Records, rec)
	}

	slog.Info("Read records", "path", path, "records", len(table.Records))
	return table, nil
}

// ReadRows loads a consensus lineage table (one row per BIN): the BIN
// identifier column plus one column per configured rank. Used for
// baseline tables and for feeding an existing table to the conflicts
// command.
func ReadRows(path string, ranks rank.Set) ([]lineage.Row, error) {
	r, closer, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer closer()

	header, err := r.Read()
	if err != nil {
		return nil, NewTableReadError(path, err)
	}
	cols, err := mapColumns(path, header, ranks)
	if err != nil {
		return nil, err
	}

	var rows []lineage.Row
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewTableReadError(path, err)
		}
		res := lineage.Row{
			BIN:    cellAt(row, cols.bin),
			Labels: make([]string, len(ranks)),
		}
		for i, c := range cols.ranks {
			res.Labels[i] = cellAt(row, c)
		}
		rows = append(rows, res)
	}

	slog.Info("Read lineage table", "path", path, "rows", len(rows))
	return rows, nil
}

// WriteRows writes a consensus lineage table: bin_uri first, then one
// column per rank in configured order.
func WriteRows(path string, ranks rank.Set, rows []lineage.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return NewTableWriteError(path, err)
	}
	defer f.Close()

	var out io.Writer = f
	var gzw *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gzw = gzip.NewWriter(f)
		defer gzw.Close()
		out = gzw
	}

	w := csv.NewWriter(out)
	w.Comma = '\t'

	header := append([]string{ColBinURI}, ranks...)
	if err := w.Write(header); err != nil {
		return NewTableWriteError(path, err)
	}
	for _, row := range rows {
		rec := append([]string{row.BIN}, row.Labels...)
		if err := w.Write(rec); err != nil {
			return NewTableWriteError(path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return NewTableWriteError(path, err)
	}

	slog.Info("Wrote lineage table", "path", path, "rows", len(rows))
	return nil
}

// WriteRecords writes an occurrence record table: record_id, bin_uri,
// one column per rank, then the vote weight. Used by the fill command,
// whose output keeps record granularity.
func WriteRecords(path string, table *lineage.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return NewTableWriteError(path, err)
	}
	defer f.Close()

	var out io.Writer = f
	var gzw *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gzw = gzip.NewWriter(f)
		defer gzw.Close()
		out = gzw
	}

	w := csv.NewWriter(out)
	w.Comma = '\t'

	header := append([]string{ColRecordID, ColBinURI}, table.Ranks...)
	header = append(header, ColWeight)
	if err := w.Write(header); err != nil {
		return NewTableWriteError(path, err)
	}
	for _, rec := range table.Records {
		row := append([]string{rec.ID, rec.BIN}, rec.Labels...)
		row = append(row, strconv.Itoa(rec.Weight))
		if err := w.Write(row); err != nil {
			return NewTableWriteError(path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return NewTableWriteError(path, err)
	}

	slog.Info("Wrote record table", "path", path, "records", len(table.Records))
	return nil
}

// columns holds resolved column indices; -1 means the column is absent.
type columns struct {
	bin    int
	id     int
	weight int
	ranks  []int
}

func mapColumns(
	path string,
	header []string,
	ranks rank.Set,
) (columns, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}

	cols := columns{bin: -1, id: -1, weight: -1}
	if i, ok := idx[ColBinURI]; ok {
		cols.bin = i
	} else {
		return cols, NewTableColumnError(path, ColBinURI)
	}
	if i, ok := idx[ColRecordID]; ok {
		cols.id = i
	}
	if i, ok := idx[ColWeight]; ok {
		cols.weight = i
	}
	for _, rnk := range ranks {
		i, ok := idx[rnk]
		if !ok {
			return cols, NewTableColumnError(path, rnk)
		}
		cols.ranks = append(cols.ranks, i)
	}
	return cols, nil
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	v := strings.TrimSpace(row[i])
	if _, ok := nullValues[v]; ok {
		return ""
	}
	return v
}

// openReader opens a TSV file, transparently ungzipping ".gz" paths.
func openReader(path string) (*csv.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, NewTableReadError(path, err)
	}

	var in io.Reader = f
	closer := func() { f.Close() }
	if strings.HasSuffix(path, ".gz") {
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, NewTableReadError(path, err)
		}
		in = gzr
		closer = func() { gzr.Close(); f.Close() }
	}

	r := csv.NewReader(in)
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r, closer, nil
}
