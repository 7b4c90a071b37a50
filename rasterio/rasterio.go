/*
Copyright © 2017 the ALFRESCO authors.
This file is part of ALFRESCO.

ALFRESCO is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ALFRESCO is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ALFRESCO.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package rasterio reads and writes the georeferenced single-band
// rasters the model consumes and produces. Every file carries the
// run's geo transform, spatial reference, nodata sentinel and
// compression tag, and every read is validated against the run's
// header so mismatched inputs fail loudly instead of shifting the
// landscape.
package rasterio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom/proj"
	"github.com/ctessum/sparse"
)

// DataType is the declared datatype of a raster band.
type DataType int

const (
	Byte DataType = iota
	Int32
	Float32
)

// String implements fmt.Stringer.
func (d DataType) String() string {
	switch d {
	case Byte:
		return "Byte"
	case Int32:
		return "Int32"
	case Float32:
		return "Float32"
	}
	return "unknown"
}

// Nodata sentinels, by declared datatype.
const (
	NodataByte             byte    = 255
	NodataInt32            int32   = -2147483647
	NodataFloat32          float32 = -3.4e38
	NodataFloat32Alternate float32 = -3.40282e+38
)

// nodata returns the default sentinel for a datatype as a float64.
func nodata(dt DataType) float64 {
	switch dt {
	case Byte:
		return float64(NodataByte)
	case Int32:
		return float64(NodataInt32)
	default:
		return float64(NodataFloat32)
	}
}

// IO holds the run's georeferencing and performs every raster file
// read and write. The geo transform is ordered the way GDAL orders
// it: x origin, x pixel size, x rotation, y origin, y rotation,
// y pixel size.
type IO struct {
	XSize, YSize int
	GeoTransform [6]float64

	// Projection is the spatial reference in Proj4 form; it is
	// parsed once and recorded in every output file.
	Projection string
	SR         *proj.SR

	writeOptions map[string]string
}

// New validates the spatial reference and prepares the writer
// options. Outputs are created with LZW compression requested.
func New(xSize, ySize int, geoTransform [6]float64, projection string) (*IO, error) {
	io := &IO{
		XSize:        xSize,
		YSize:        ySize,
		GeoTransform: geoTransform,
		Projection:   projection,
		writeOptions: map[string]string{"COMPRESS": "LZW"},
	}
	if projection != "" {
		sr, err := proj.Parse(projection)
		if err != nil {
			return nil, fmt.Errorf("rasterio: parsing spatial reference %q: %v", projection, err)
		}
		io.SR = sr
	}
	return io, nil
}

// Read loads a single-band raster, validates its metadata against the
// run's header, and normalizes any file-specific or alternate nodata
// values to the datatype's default sentinel. The result is a dense
// YSize×XSize array holding the raw values.
func (io *IO) Read(path string, dt DataType) (*sparse.DenseArray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rasterio: unable to open raster file at %s: %v", path, err)
	}
	defer f.Close()

	cf, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("rasterio: %s: %v", path, err)
	}

	if err := io.validateMetadata(cf, path, dt); err != nil {
		return nil, err
	}

	r := cf.Reader("data", nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("rasterio: reading %s: %v", path, err)
	}

	data := sparse.ZerosDense(io.YSize, io.XSize)
	switch vals := buf.(type) {
	case []int8:
		for i, v := range vals {
			data.Elements[i] = float64(uint8(v))
		}
	case []int32:
		for i, v := range vals {
			data.Elements[i] = float64(v)
		}
	case []float32:
		for i, v := range vals {
			data.Elements[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("rasterio: %s: unsupported band datatype %T", path, buf)
	}

	io.normalizeNodata(cf, data, dt)
	return data, nil
}

// normalizeNodata rewrites the file's declared nodata value (and, for
// float rasters, the well-known alternate) to the default sentinel.
func (io *IO) normalizeNodata(cf *cdf.File, data *sparse.DenseArray, dt DataType) {
	def := nodata(dt)
	if a := cf.Header.GetAttribute("data", "nodata"); a != nil {
		if vals, ok := a.([]float64); ok && len(vals) == 1 && vals[0] != def {
			for i, v := range data.Elements {
				if v == vals[0] {
					data.Elements[i] = def
				}
			}
		}
	}
	if dt == Float32 {
		alt := float64(NodataFloat32Alternate)
		for i, v := range data.Elements {
			if v == alt {
				data.Elements[i] = def
			}
		}
	}
}

func (io *IO) validateMetadata(cf *cdf.File, path string, dt DataType) error {
	var errs []string

	dims := cf.Header.Lengths("data")
	if len(dims) != 2 {
		errs = append(errs, fmt.Sprintf("expected a single 2-D band but found %d dimensions", len(dims)))
	} else if dims[0] != io.YSize || dims[1] != io.XSize {
		errs = append(errs, fmt.Sprintf("expected a raster size of %d x %d but found %d x %d",
			io.XSize, io.YSize, dims[1], dims[0]))
	}

	if a := cf.Header.GetAttribute("data", "datatype"); a != nil {
		if s, ok := a.(string); ok && s != dt.String() {
			errs = append(errs, fmt.Sprintf("expected the datatype to be %s but found %s", dt, s))
		}
	}

	if a := cf.Header.GetAttribute("data", "geo_transform"); a != nil {
		if gt, ok := a.([]float64); ok && len(gt) == 6 {
			const tol = 0.00001
			if !floatEquals(gt[0], io.GeoTransform[0], tol) || !floatEquals(gt[3], io.GeoTransform[3], tol) {
				errs = append(errs, fmt.Sprintf("expected an origin of (%g, %g) but found (%g, %g)",
					io.GeoTransform[0], io.GeoTransform[3], gt[0], gt[3]))
			}
			if !floatEquals(gt[1], io.GeoTransform[1], tol) || !floatEquals(gt[5], io.GeoTransform[5], tol) {
				errs = append(errs, fmt.Sprintf("expected a raster pixel size of %g x %g but found %g x %g",
					io.GeoTransform[1], io.GeoTransform[5], gt[1], gt[5]))
			}
			if !floatEquals(gt[2], io.GeoTransform[2], tol) || !floatEquals(gt[4], io.GeoTransform[4], tol) {
				errs = append(errs, fmt.Sprintf("expected a rotation of (%g, %g) but found (%g, %g)",
					io.GeoTransform[2], io.GeoTransform[4], gt[2], gt[4]))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("rasterio: %s: %s", path, strings.Join(errs, "; "))
	}
	return nil
}

func floatEquals(a, b, tol float64) bool {
	d := a - b
	return d < tol && d > -tol
}

// Write creates a raster file, writes every row, and closes it. On
// any failure the partial file is removed. The file records the geo
// transform, spatial reference, nodata sentinel, declared datatype
// and the writer's compression option.
func (io *IO) Write(path string, data *sparse.DenseArray, dt DataType) (err error) {
	if len(data.Elements) != io.XSize*io.YSize {
		return fmt.Errorf("rasterio: %s: data holds %d cells; the raster needs %d",
			path, len(data.Elements), io.XSize*io.YSize)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("rasterio: unable to create output directory for %s: %v", path, err)
		}
	}

	h := cdf.NewHeader([]string{"y", "x"}, []int{io.YSize, io.XSize})
	switch dt {
	case Byte:
		h.AddVariable("data", []string{"y", "x"}, []int8{0})
	case Int32:
		h.AddVariable("data", []string{"y", "x"}, []int32{0})
	case Float32:
		h.AddVariable("data", []string{"y", "x"}, []float32{0})
	default:
		return fmt.Errorf("rasterio: %s: undefined datatype %d", path, dt)
	}
	h.AddAttribute("data", "datatype", dt.String())
	h.AddAttribute("data", "geo_transform", io.GeoTransform[:])
	h.AddAttribute("data", "projection", io.Projection)
	h.AddAttribute("data", "nodata", []float64{nodata(dt)})
	h.AddAttribute("data", "compress", io.writeOptions["COMPRESS"])
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("rasterio: creating %s: %v", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rasterio: unable to create output file at %s: %v", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("rasterio: closing %s: %v", path, cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	cf, err := cdf.Create(f, h)
	if err != nil {
		return fmt.Errorf("rasterio: creating %s: %v", path, err)
	}

	n := io.XSize * io.YSize
	w := cf.Writer("data", []int{0, 0}, []int{io.YSize, io.XSize})
	switch dt {
	case Byte:
		buf := make([]int8, n)
		for i, v := range data.Elements {
			buf[i] = int8(uint8(v))
		}
		_, err = w.Write(buf)
	case Int32:
		buf := make([]int32, n)
		for i, v := range data.Elements {
			buf[i] = int32(v)
		}
		_, err = w.Write(buf)
	case Float32:
		buf := make([]float32, n)
		for i, v := range data.Elements {
			buf[i] = float32(v)
		}
		_, err = w.Write(buf)
	}
	if err != nil {
		return fmt.Errorf("rasterio: failed to write to file at %s: %v", path, err)
	}
	return nil
}
