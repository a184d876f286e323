// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/csv2shp/internal/convert"
	"github.com/pdiddy/csv2shp/internal/crs"
	"github.com/pdiddy/csv2shp/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [source]",
	Short: "Convert prefixed rows of a survey table to a zipped shapefile",
	Long: `Convert reads a CSV or Excel table with Name, Easting, Northing and
Elevation columns, keeps the rows whose Name starts with --prefix, and writes
<tag>_coded_targets_<batch>.shp.zip holding the PointZ shapefile and a CSV
extract of the selected rows.

Without a source argument nothing is converted. With --interactive the
source and the archive path are asked for on standard input.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

// crsValue is a pflag.Value that only accepts supported reference systems.
type crsValue struct {
	ref crs.CRS
}

var _ pflag.Value = (*crsValue)(nil)

func (v *crsValue) String() string {
	if v.ref == (crs.CRS{}) {
		return types.DefaultCRS
	}
	return v.ref.String()
}

func (v *crsValue) Set(s string) error {
	ref, err := crs.Parse(s)
	if err != nil {
		return err
	}
	v.ref = ref
	return nil
}

func (v *crsValue) Type() string { return "crs" }

var convertCRS crsValue

func init() {
	convertCmd.Flags().String("prefix", "", "select rows whose Name starts with this text")
	convertCmd.Flags().String("batch", "", "photo batch identifier used in file names")
	convertCmd.Flags().String("tag", "", "naming tag (default: first configured tag)")
	convertCmd.Flags().StringP("output", "o", "", "archive path (default: <output-dir>/<tag>_coded_targets_<batch>.shp.zip)")
	convertCmd.Flags().String("output-dir", "", "directory for the default archive name (default from config)")
	convertCmd.Flags().Var(&convertCRS, "crs", "coordinate reference system, e.g. EPSG:32635")
	convertCmd.Flags().String("sheet", "", "worksheet to read from an Excel source (default: first)")
	convertCmd.Flags().BoolP("interactive", "i", false, "prompt for a missing source and for the archive path")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(viper.GetViper())
	out := cmd.OutOrStdout()

	interactive, _ := cmd.Flags().GetBool("interactive")
	prompt := newPrompter(cmd.InOrStdin(), out)

	var source string
	if len(args) > 0 {
		source = args[0]
	} else if interactive {
		answer, err := prompt.ask("Source table: ")
		if err != nil {
			return err
		}
		source = answer
	}

	prefix, _ := cmd.Flags().GetString("prefix")
	batch, _ := cmd.Flags().GetString("batch")
	sheet, _ := cmd.Flags().GetString("sheet")
	tag, _ := cmd.Flags().GetString("tag")
	tag, err := resolveTag(cfg.Conversion, tag)
	if err != nil {
		return err
	}

	ref := convertCRS.ref
	if !cmd.Flags().Changed("crs") {
		if ref, err = crs.Parse(cfg.Conversion.CRS); err != nil {
			return fmt.Errorf("config conversion.crs: %w", err)
		}
	}

	outputDir, _ := cmd.Flags().GetString("output-dir")
	if outputDir == "" {
		outputDir = cfg.Conversion.OutputDir
	}
	output, _ := cmd.Flags().GetString("output")

	var dest convert.DestinationChooser
	switch {
	case output != "":
		dest = convert.FixedDestination(output)
	case interactive:
		dest = prompt.destination(outputDir)
	default:
		dest = convert.InDirectory(outputDir)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	_, err = convert.Run(ctx, source, convert.Options{
		Prefix:  prefix,
		Naming:  types.Naming{Tag: tag, Batch: batch},
		CRS:     ref,
		Sheet:   sheet,
		WorkDir: cfg.Conversion.WorkDir,
		Logger:  newLogger(cfg.Log),
	}, dest, out)
	return err
}

// resolveTag returns tag, or the default tag when empty, after checking it
// against the configured list.
func resolveTag(cfg types.ConversionConfig, tag string) (string, error) {
	if tag == "" {
		tag = cfg.DefaultTag()
	}
	if !cfg.HasTag(tag) {
		return "", fmt.Errorf("unknown naming tag %q (configured: %s)", tag, strings.Join(cfg.NamingTags, ", "))
	}
	return tag, nil
}

// prompter asks questions on a line-oriented terminal.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prints question and returns the trimmed answer. End of input before
// any text yields an empty answer.
func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		fmt.Fprintln(p.out)
	}
	return strings.TrimSpace(line), nil
}

// destination asks for the archive path. An empty line accepts the default
// under dir; end of input cancels.
func (p *prompter) destination(dir string) convert.DestinationChooser {
	return convert.DestinationFunc(func(defaultName string) (string, error) {
		def := filepath.Join(dir, defaultName)
		fmt.Fprintf(p.out, "Save archive as [%s]: ", def)
		line, err := p.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading answer: %w", err)
		}
		if errors.Is(err, io.EOF) && line == "" {
			fmt.Fprintln(p.out)
			return "", nil
		}
		if answer := strings.TrimSpace(line); answer != "" {
			return answer, nil
		}
		return def, nil
	})
}
