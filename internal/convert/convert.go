// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns the rows of a survey table whose Name starts with a
// prefix into a zipped PointZ shapefile plus a CSV extract of the same rows.
//
// A run is one synchronous pass: read, filter, build points, write the
// shapefile and CSV into a scratch directory, zip, and remove the scratch
// directory. Operator-facing status lines are written to an io.Writer;
// diagnostics go to the optional Logger.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/csv2shp/internal/archive"
	"github.com/pdiddy/csv2shp/internal/crs"
	"github.com/pdiddy/csv2shp/internal/logging"
	"github.com/pdiddy/csv2shp/internal/shapefile"
	"github.com/pdiddy/csv2shp/internal/table"
	"github.com/pdiddy/csv2shp/pkg/types"
)

// Status messages shown to the operator.
const (
	MsgSourceNotSelected      = "CSV file not selected."
	MsgNoRecords              = "No records found with the specified prefix."
	MsgDestinationNotSelected = "ZIP file save path not selected."
)

// shapefileDir is the scratch subdirectory holding the shapefile components.
const shapefileDir = "shapefile"

// Options are the per-run parameters of a conversion.
type Options struct {
	// Prefix selects rows whose Name starts with it. Empty selects all rows.
	Prefix string

	// Naming supplies the tag and batch tokens used in output file names.
	Naming types.Naming

	// CRS is attached to every output point. The zero value means crs.Default.
	CRS crs.CRS

	// Sheet names the worksheet of an Excel source. Empty selects the first.
	Sheet string

	// WorkDir is the parent of the scratch directory. Empty means os.TempDir.
	WorkDir string

	// Logger receives diagnostics. Nil disables them.
	Logger logging.Logger
}

// Result describes the outcome of a run.
type Result struct {
	Status types.ConversionStatus

	// Archive is the path of the written zip (types.ConversionDone only).
	Archive string

	// Members lists the archive member names in write order.
	Members []string

	// Total is the number of rows in the source table; Matched the number
	// selected by the prefix.
	Total   int
	Matched int

	// Extent summarises the converted points.
	Extent Extent

	// Digest is the BLAKE3 hex digest of the archive.
	Digest string

	Elapsed time.Duration
}

// Run loads the table at source and converts it. An empty source means the
// operator did not pick a file; Run reports that and returns
// types.ConversionCancelled without error. Errors are returned, not written
// to w; the caller reports them once.
func Run(ctx context.Context, source string, opts Options, dest DestinationChooser, w io.Writer) (Result, error) {
	if source == "" {
		fmt.Fprintln(w, MsgSourceNotSelected)
		return Result{Status: types.ConversionCancelled}, nil
	}

	log := logging.OrNoop(opts.Logger)
	var (
		tbl *table.Table
		err error
	)
	if opts.Sheet != "" && table.IsWorkbook(source) {
		tbl, err = table.ReadXLSX(source, opts.Sheet)
	} else {
		tbl, err = table.ReadFile(source)
	}
	if err != nil {
		return Result{Status: types.ConversionFailed}, err
	}
	log.Debug(ctx, "source loaded", logging.String("source", source), logging.Int("rows", tbl.Len()))

	opts.Logger = log.With(logging.String("source", filepath.Base(source)))
	return Convert(ctx, tbl, opts, dest, w)
}

// Convert runs the pipeline over an already loaded table. The context only
// scopes diagnostics; a started conversion is not interruptible.
//
// Bad input (a missing column, an unparseable coordinate on a selected row,
// an unsafe naming token) aborts the run before anything is written. File
// system failures abort it with the scratch directory removed and no
// archive at the destination.
func Convert(ctx context.Context, tbl *table.Table, opts Options, dest DestinationChooser, w io.Writer) (Result, error) {
	start := time.Now()
	res, err := convert(ctx, tbl, opts, dest, w)
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Status = types.ConversionFailed
		logging.OrNoop(opts.Logger).Debug(ctx, "conversion aborted", logging.Err(err))
	}
	return res, err
}

func convert(ctx context.Context, tbl *table.Table, opts Options, dest DestinationChooser, w io.Writer) (Result, error) {
	log := logging.OrNoop(opts.Logger)
	if opts.CRS == (crs.CRS{}) {
		opts.CRS = crs.Default
	}

	if err := opts.Naming.Validate(opts.Prefix); err != nil {
		return Result{}, err
	}
	if err := tbl.Require(table.RequiredColumns...); err != nil {
		return Result{}, err
	}

	selected := tbl.FilterPrefix(table.ColName, opts.Prefix)
	res := Result{Total: tbl.Len(), Matched: selected.Len()}
	log.Debug(ctx, "rows selected",
		logging.String("prefix", opts.Prefix),
		logging.Int("total", res.Total),
		logging.Int("matched", res.Matched))

	if selected.Len() == 0 {
		fmt.Fprintln(w, MsgNoRecords)
		res.Status = types.ConversionNoMatches
		return res, nil
	}

	ds, err := buildDataset(selected, opts.CRS)
	if err != nil {
		return res, err
	}
	res.Extent = computeExtent(ds.Features)

	target, err := dest.ChooseDestination(opts.Naming.ArchiveName())
	if err != nil {
		return res, fmt.Errorf("choosing destination: %w", err)
	}
	if target == "" {
		fmt.Fprintln(w, MsgDestinationNotSelected)
		res.Status = types.ConversionCancelled
		return res, nil
	}
	if filepath.Ext(target) == "" {
		target += ".zip"
	}

	work, err := os.MkdirTemp(opts.WorkDir, "csv2shp-")
	if err != nil {
		return res, fmt.Errorf("creating working directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(work); err != nil {
			log.Warn(ctx, "removing working directory", logging.String("dir", work), logging.Err(err))
		}
	}()

	members, err := writeOutputs(work, selected, ds, opts)
	if err != nil {
		return res, err
	}

	if err := archive.Create(target, members); err != nil {
		return res, err
	}
	for _, m := range members {
		res.Members = append(res.Members, m.Name)
	}
	res.Archive = target
	res.Status = types.ConversionDone

	if digest, err := archive.Digest(target); err != nil {
		log.Warn(ctx, "hashing archive", logging.Err(err))
	} else {
		res.Digest = digest
	}

	fmt.Fprintf(w, "%d of %d records matched prefix %q\n", res.Matched, res.Total, opts.Prefix)
	fmt.Fprintf(w, "Shapefile saved as %s\n", target)
	fmt.Fprintf(w, "CSV exported as %s\n", opts.Naming.CSVName())
	if res.Digest != "" {
		fmt.Fprintf(w, "archive digest (blake3): %s\n", res.Digest)
	}
	log.Info(ctx, "conversion finished",
		logging.String("archive", target),
		logging.Int("points", res.Matched),
		logging.String("crs", opts.CRS.String()))

	return res, nil
}

// writeOutputs writes the shapefile under work/shapefile and the CSV extract
// under work, returning them as archive members.
func writeOutputs(work string, selected *table.Table, ds shapefile.Dataset, opts Options) ([]archive.Member, error) {
	shpDir := filepath.Join(work, shapefileDir)
	if err := os.Mkdir(shpDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating shapefile directory: %w", err)
	}

	paths, err := shapefile.Write(shpDir, opts.Naming.ShapefileBase(opts.Prefix), ds)
	if err != nil {
		return nil, fmt.Errorf("writing shapefile: %w", err)
	}

	csvName := opts.Naming.CSVName()
	csvPath := filepath.Join(work, csvName)
	if err := selected.WriteCSVFile(csvPath); err != nil {
		return nil, fmt.Errorf("writing CSV extract: %w", err)
	}

	members := make([]archive.Member, 0, len(paths)+1)
	for _, p := range paths {
		members = append(members, archive.Member{Name: filepath.Base(p), Path: p})
	}
	members = append(members, archive.Member{Name: csvName, Path: csvPath})
	return members, nil
}

// buildDataset makes one PointZ per selected row. Coordinate columns become
// numeric attributes; every other column is carried through as text.
func buildDataset(selected *table.Table, ref crs.CRS) (shapefile.Dataset, error) {
	ds := shapefile.Dataset{CRS: ref}

	coordCol := map[int]bool{
		selected.Index(table.ColEasting):   true,
		selected.Index(table.ColNorthing):  true,
		selected.Index(table.ColElevation): true,
	}
	for i, h := range selected.Header {
		kind := shapefile.KindString
		if coordCol[i] {
			kind = shapefile.KindFloat
		}
		ds.Fields = append(ds.Fields, shapefile.Field{Name: h, Kind: kind})
	}

	for _, r := range selected.Rows {
		x, err := selected.Float(r, table.ColEasting)
		if err != nil {
			return ds, err
		}
		y, err := selected.Float(r, table.ColNorthing)
		if err != nil {
			return ds, err
		}
		z, err := selected.Float(r, table.ColElevation)
		if err != nil {
			return ds, err
		}

		values := make([]any, len(selected.Header))
		for i := range selected.Header {
			v := ""
			if i < len(r.Fields) {
				v = r.Fields[i]
			}
			values[i] = v
		}
		values[selected.Index(table.ColEasting)] = x
		values[selected.Index(table.ColNorthing)] = y
		values[selected.Index(table.ColElevation)] = z

		ds.Features = append(ds.Features, shapefile.Feature{X: x, Y: y, Z: z, Values: values})
	}
	return ds, nil
}
