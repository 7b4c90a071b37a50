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

package alfrescoutil

import (
	"os"

	"github.com/lnashier/viper"
	"github.com/spf13/cast"

	"github.com/rarutter/alfresco"
	"github.com/rarutter/alfresco/rasterio"
)

// Cfg holds configuration information. It implements the model's
// typed key→value dictionary on top of viper, so parameters can come
// from the configuration file, flags or the environment
// interchangeably.
type Cfg struct {
	*viper.Viper
}

// HasKey implements alfresco.Config.
func (c *Cfg) HasKey(key string) bool { return c.IsSet(key) }

func (c *Cfg) value(key string) (interface{}, error) {
	if !c.IsSet(key) {
		return nil, &alfresco.ConfigError{Key: key, Reason: "missing required key"}
	}
	return c.Get(key), nil
}

// Int implements alfresco.Config.
func (c *Cfg) Int(key string) (int, error) {
	v, err := c.value(key)
	if err != nil {
		return 0, err
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return 0, &alfresco.ConfigError{Key: key, Reason: err.Error()}
	}
	return i, nil
}

// Float implements alfresco.Config.
func (c *Cfg) Float(key string) (float64, error) {
	v, err := c.value(key)
	if err != nil {
		return 0, err
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, &alfresco.ConfigError{Key: key, Reason: err.Error()}
	}
	return f, nil
}

// Bool implements alfresco.Config.
func (c *Cfg) Bool(key string) (bool, error) {
	v, err := c.value(key)
	if err != nil {
		return false, err
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, &alfresco.ConfigError{Key: key, Reason: err.Error()}
	}
	return b, nil
}

// String implements alfresco.Config. String values expand environment
// variables so file paths can be written portably.
func (c *Cfg) String(key string) (string, error) {
	v, err := c.value(key)
	if err != nil {
		return "", err
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", &alfresco.ConfigError{Key: key, Reason: err.Error()}
	}
	return os.ExpandEnv(s), nil
}

// IntSlice implements alfresco.Config.
func (c *Cfg) IntSlice(key string) ([]int, error) {
	v, err := c.value(key)
	if err != nil {
		return nil, err
	}
	s, err := cast.ToIntSliceE(v)
	if err != nil {
		return nil, &alfresco.ConfigError{Key: key, Reason: err.Error()}
	}
	return s, nil
}

// FloatSlice implements alfresco.Config.
func (c *Cfg) FloatSlice(key string) ([]float64, error) {
	v, err := c.value(key)
	if err != nil {
		return nil, err
	}
	raw, err := cast.ToSliceE(v)
	if err != nil {
		// A scalar behaves as a one-element array.
		f, ferr := cast.ToFloat64E(v)
		if ferr != nil {
			return nil, &alfresco.ConfigError{Key: key, Reason: err.Error()}
		}
		return []float64{f}, nil
	}
	out := make([]float64, len(raw))
	for i, r := range raw {
		f, err := cast.ToFloat64E(r)
		if err != nil {
			return nil, &alfresco.ConfigError{Key: key, Reason: err.Error()}
		}
		out[i] = f
	}
	return out, nil
}

// StringSlice implements alfresco.Config.
func (c *Cfg) StringSlice(key string) ([]string, error) {
	v, err := c.value(key)
	if err != nil {
		return nil, err
	}
	s, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil, &alfresco.ConfigError{Key: key, Reason: err.Error()}
	}
	out := make([]string, len(s))
	for i, e := range s {
		out[i] = os.ExpandEnv(e)
	}
	return out, nil
}

// RasterIO builds the run's raster handler from the configured
// header: sizes, geo transform and spatial reference.
func (c *Cfg) RasterIO() (*rasterio.IO, error) {
	xSize, err := c.Int("Raster.XSize")
	if err != nil {
		return nil, err
	}
	ySize, err := c.Int("Raster.YSize")
	if err != nil {
		return nil, err
	}
	var gt [6]float64
	for i, key := range []string{
		"Raster.XOrigin", "Raster.XPixelSize", "Raster.XRotation",
		"Raster.YOrigin", "Raster.YRotation", "Raster.YPixelSize",
	} {
		if gt[i], err = c.Float(key); err != nil {
			return nil, err
		}
	}
	projection := ""
	if c.IsSet("Raster.Projection") {
		if projection, err = c.String("Raster.Projection"); err != nil {
			return nil, err
		}
	}
	return rasterio.New(xSize, ySize, gt, projection)
}
