/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package duration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var dayPrefix = regexp.MustCompile(`^([+-]?\d+)d`)

// parseString parses the native time.ParseDuration units plus a
// leading day count ("2d12h", "5d23h15m13s"), so a value formatted by
// Duration's day-aware String() parses back unchanged. Quotes and
// interior whitespace are stripped first to tolerate values lifted
// straight out of a config file or JSON/YAML document.
func parseString(s string) (Duration, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.Replace(s, "\"", "", -1)
	s = strings.Replace(s, "'", "", -1)

	var (
		days    int64
		matched bool
	)
	if m := dayPrefix.FindStringSubmatch(s); m != nil {
		n, e := strconv.ParseInt(m[1], 10, 64)
		if e != nil {
			return 0, e
		}
		days = n
		matched = true
		s = s[len(m[0]):]
	}

	if s == "" {
		if !matched {
			return 0, fmt.Errorf("duration: invalid duration string %q", s)
		}
		return Days(days), nil
	}

	v, e := time.ParseDuration(s)
	if e != nil {
		return 0, e
	}
	return Days(days) + Duration(v), nil
}

func (d *Duration) parseString(s string) error {
	if v, e := parseString(s); e != nil {
		return e
	} else {
		*d = v
		return nil
	}
}

func (d *Duration) unmarshall(val []byte) error {
	if tmp, err := ParseByte(val); err != nil {
		return err
	} else {
		*d = tmp
		return nil
	}
}
