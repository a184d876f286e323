// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/csv2shp/internal/archive"
	"github.com/pdiddy/csv2shp/internal/shapefile"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <archive>",
	Short: "Describe a produced archive",
	Long: `Inspect lists the members of a csv2shp archive and reports the point
count, coordinate reference system and BLAKE3 digest.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspectArchive(args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func inspectArchive(path string, w io.Writer) error {
	names, err := archive.List(path)
	if err != nil {
		return err
	}
	digest, err := archive.Digest(path)
	if err != nil {
		return err
	}

	tmp, err := os.MkdirTemp("", "csv2shp-inspect-")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	if _, err := archive.Extract(path, tmp); err != nil {
		return err
	}

	fmt.Fprintf(w, "archive: %s\n", path)
	fmt.Fprintf(w, "blake3:  %s\n", digest)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", name)
	}

	for _, name := range names {
		if !strings.EqualFold(filepath.Ext(name), ".shp") {
			continue
		}
		ds, err := shapefile.Read(filepath.Join(tmp, name))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %d points, %s (%s), %d fields\n",
			name, len(ds.Features), ds.CRS, ds.CRS.Name(), len(ds.Fields))
	}
	return nil
}
