// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/csv2shp/internal/shapefile"
)

// Extent is the 3D bounding box and mean position of a set of points.
type Extent struct {
	MinX, MinY, MinZ float64
	MaxX, MaxY, MaxZ float64

	// Centroid is the unweighted mean of the points.
	Centroid [3]float64
}

func computeExtent(features []shapefile.Feature) Extent {
	if len(features) == 0 {
		return Extent{}
	}
	xs := make([]float64, len(features))
	ys := make([]float64, len(features))
	zs := make([]float64, len(features))
	for i, f := range features {
		xs[i], ys[i], zs[i] = f.X, f.Y, f.Z
	}
	return Extent{
		MinX: floats.Min(xs), MinY: floats.Min(ys), MinZ: floats.Min(zs),
		MaxX: floats.Max(xs), MaxY: floats.Max(ys), MaxZ: floats.Max(zs),
		Centroid: [3]float64{stat.Mean(xs, nil), stat.Mean(ys, nil), stat.Mean(zs, nil)},
	}
}
