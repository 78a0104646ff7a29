/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package rpccfg

import (
	"fmt"
	"reflect"

	libmap "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/sabouaram/goice/duration"
	"github.com/sabouaram/goice/rpcerr"
)

// ViperDecoderHook returns a DecodeHookFuncType that lets a Connection's
// policy enums and day-aware durations be spelled out as plain strings
// ("bzip2", "onidle", "always", "1d2h", ...) in a config file rather
// than their underlying uint8/int64 values.
func ViperDecoderHook() libmap.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}
		s, ok := data.(string)
		if !ok {
			return data, nil
		}

		switch to {
		case reflect.TypeOf(ACMHeartbeatOff):
			return ParseACMHeartbeatPolicy(s), nil
		case reflect.TypeOf(ACMCloseOnIdleOff):
			return ParseACMClosePolicy(s), nil
		case reflect.TypeOf(CompressionBzip2):
			return ParseCompressionAlgorithm(s), nil
		case reflect.TypeOf(duration.Duration(0)):
			var d duration.Duration
			if err := d.UnmarshalText([]byte(s)); err != nil {
				return data, err
			}
			return d, nil
		default:
			return data, nil
		}
	}
}

// Load reads key from v into a Connection, applying ViperDecoderHook for
// the policy enums and duration fields, then validates the result. A
// missing key is not an error: Load returns Default() validated as-is.
func Load(v *viper.Viper, key string) (Connection, rpcerr.Error) {
	cfg := Default()

	if v == nil {
		return cfg, rpcerr.Configuration.Errorf("nil viper instance")
	}

	if v.IsSet(key) {
		opt := viper.DecoderConfigOption(func(c *libmap.DecoderConfig) {
			c.DecodeHook = ViperDecoderHook()
		})
		if err := v.UnmarshalKey(key, &cfg, opt); err != nil {
			return cfg, rpcerr.Configuration.Errorf("decoding config key %q: %s", key, err)
		}
	}

	if verr := cfg.Validate(); verr != nil {
		return cfg, verr
	}

	return cfg, nil
}

// MustLoad is Load with the error formatted into a panic, for CLI
// bootstrap code that has nowhere better to surface a configuration
// mistake than failing fast at startup.
func MustLoad(v *viper.Viper, key string) Connection {
	cfg, err := Load(v, key)
	if err != nil {
		panic(fmt.Sprintf("rpccfg: %s", err.Error()))
	}
	return cfg
}
