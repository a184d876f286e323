//go:build mage

// Package main contains Mage build targets for csv2shp developer tooling.
package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "csv2shp"
	cmdPkg  = "./cmd/csv2shp"

	sampleDir = "sample"
)

// Build compiles the CLI binary into bin/, stamping the version from git
// when available.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-ldflags", "-X main.version="+version, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", out, version)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// sampleRows is a small survey with two prefixes.
var sampleRows = []string{
	"Name,Easting,Northing,Elevation,Code",
	"T01,500012.314,4649776.201,101.552,CT",
	"T02,500031.870,4649790.008,102.113,CT",
	"T03,500047.002,4649812.640,101.908,CT",
	"G01,500100.000,4649900.000,99.870,GCP",
}

// Sample writes a sample survey under sample/ and converts its T rows.
func Sample() error {
	mg.Deps(Build)

	if err := os.MkdirAll(sampleDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", sampleDir, err)
	}
	src := filepath.Join(sampleDir, "survey.csv")
	if err := os.WriteFile(src, []byte(strings.Join(sampleRows, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", src, err)
	}

	bin := filepath.Join(binDir, binName)
	if err := sh.RunV(bin, "convert", src, "--prefix", "T", "--batch", "sample", "--output-dir", sampleDir); err != nil {
		return err
	}
	return sh.RunV(bin, "inspect", filepath.Join(sampleDir, "86_540_coded_targets_sample.shp.zip"))
}

// Stats prints non-blank Go lines per package, split into production and
// test code, and the word count of the Markdown documents at the root.
func Stats() error {
	prod, test := map[string]int{}, map[string]int{}
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); path != "." && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		n, err := countLines(path)
		if err != nil {
			return err
		}
		if strings.HasSuffix(path, "_test.go") {
			test[filepath.Dir(path)] += n
		} else {
			prod[filepath.Dir(path)] += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	dirs := make([]string, 0, len(prod))
	for d := range prod {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	var totalProd, totalTest int
	fmt.Printf("%-28s %8s %8s\n", "package", "prod", "test")
	for _, d := range dirs {
		fmt.Printf("%-28s %8d %8d\n", d, prod[d], test[d])
		totalProd += prod[d]
		totalTest += test[d]
	}
	fmt.Printf("%-28s %8d %8d\n", "total", totalProd, totalTest)

	docs, _ := filepath.Glob("*.md")
	words := 0
	for _, doc := range docs {
		data, err := os.ReadFile(doc)
		if err != nil {
			return fmt.Errorf("reading %s: %w", doc, err)
		}
		words += len(strings.Fields(string(data)))
	}
	fmt.Printf("Words (documentation): %d\n", words)
	return nil
}

func countLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	n := 0
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			n++
		}
	}
	return n, nil
}
