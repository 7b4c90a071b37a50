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

package alfresco

import "github.com/spf13/cast"

// Config is the typed key→value dictionary the model reads its
// parameters from. alfrescoutil backs it with viper; tests use
// ConfigMap.
type Config interface {
	HasKey(key string) bool
	Int(key string) (int, error)
	Float(key string) (float64, error)
	Bool(key string) (bool, error)
	String(key string) (string, error)
	IntSlice(key string) ([]int, error)
	FloatSlice(key string) ([]float64, error)
	StringSlice(key string) ([]string, error)
}

// ConfigMap is an in-memory Config for tests and embedding harnesses.
type ConfigMap map[string]interface{}

// HasKey implements Config.
func (c ConfigMap) HasKey(key string) bool {
	_, ok := c[key]
	return ok
}

func (c ConfigMap) get(key string) (interface{}, error) {
	v, ok := c[key]
	if !ok {
		return nil, configError(key, "missing required key")
	}
	return v, nil
}

// Int implements Config.
func (c ConfigMap) Int(key string) (int, error) {
	v, err := c.get(key)
	if err != nil {
		return 0, err
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return 0, configError(key, "%v", err)
	}
	return i, nil
}

// Float implements Config.
func (c ConfigMap) Float(key string) (float64, error) {
	v, err := c.get(key)
	if err != nil {
		return 0, err
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, configError(key, "%v", err)
	}
	return f, nil
}

// Bool implements Config.
func (c ConfigMap) Bool(key string) (bool, error) {
	v, err := c.get(key)
	if err != nil {
		return false, err
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, configError(key, "%v", err)
	}
	return b, nil
}

// String implements Config.
func (c ConfigMap) String(key string) (string, error) {
	v, err := c.get(key)
	if err != nil {
		return "", err
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", configError(key, "%v", err)
	}
	return s, nil
}

// IntSlice implements Config.
func (c ConfigMap) IntSlice(key string) ([]int, error) {
	v, err := c.get(key)
	if err != nil {
		return nil, err
	}
	s, err := cast.ToIntSliceE(v)
	if err != nil {
		return nil, configError(key, "%v", err)
	}
	return s, nil
}

// FloatSlice implements Config.
func (c ConfigMap) FloatSlice(key string) ([]float64, error) {
	v, err := c.get(key)
	if err != nil {
		return nil, err
	}
	raw, err := cast.ToSliceE(v)
	if err != nil {
		// A scalar behaves as a one-element array, matching the
		// key=value file format.
		f, ferr := cast.ToFloat64E(v)
		if ferr != nil {
			return nil, configError(key, "%v", err)
		}
		return []float64{f}, nil
	}
	out := make([]float64, len(raw))
	for i, r := range raw {
		f, err := cast.ToFloat64E(r)
		if err != nil {
			return nil, configError(key, "element %d: %v", i, err)
		}
		out[i] = f
	}
	return out, nil
}

// StringSlice implements Config.
func (c ConfigMap) StringSlice(key string) ([]string, error) {
	v, err := c.get(key)
	if err != nil {
		return nil, err
	}
	s, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil, configError(key, "%v", err)
	}
	return s, nil
}

// keyReader reads typed values from a Config, remembering the first
// error so a block of reads can be checked once.
type keyReader struct {
	cfg Config
	err error
}

func (k *keyReader) intval(key string) int {
	v, err := k.cfg.Int(key)
	if err != nil && k.err == nil {
		k.err = err
	}
	return v
}

func (k *keyReader) float(key string) float64 {
	v, err := k.cfg.Float(key)
	if err != nil && k.err == nil {
		k.err = err
	}
	return v
}

func (k *keyReader) boolean(key string) bool {
	v, err := k.cfg.Bool(key)
	if err != nil && k.err == nil {
		k.err = err
	}
	return v
}

func (k *keyReader) str(key string) string {
	v, err := k.cfg.String(key)
	if err != nil && k.err == nil {
		k.err = err
	}
	return v
}

// floats reads a float array and enforces its arity, the way the
// original model validated its parameter arrays.
func (k *keyReader) floats(key string, n int) []float64 {
	v, err := k.cfg.FloatSlice(key)
	if err != nil {
		if k.err == nil {
			k.err = err
		}
		return make([]float64, n)
	}
	if n > 0 && len(v) != n {
		if k.err == nil {
			k.err = configError(key, "expected array size of %d but found %d", n, len(v))
		}
		return make([]float64, n)
	}
	return v
}
