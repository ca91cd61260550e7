// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Fallback is saved when the body carries no usable message.
const Fallback = "No message provided"

const timestampLayout = "2006-01-02T15:04:05.000Z"

var timestampReplacer = strings.NewReplacer(":", "-", ".", "-")

var (
	errNullBody      = errors.New("request body is null")
	errUnexpectedEnd = errors.New("unexpected end of JSON input")
	errTrailingData  = errors.New("invalid character after top-level value")
)

// ObjectName derives an object name from t: its UTC ISO-8601 timestamp with
// millisecond precision, ':' and '.' replaced by '-', and a ".txt" suffix.
// Two invocations in the same millisecond get the same name.
func ObjectName(t time.Time) string {
	return timestampReplacer.Replace(t.UTC().Format(timestampLayout)) + ".txt"
}

// ParseMessage extracts the message text from a JSON body.
//
// A missing or falsy message (null, "", false, 0) yields Fallback. Numbers
// are written the way JavaScript prints them ("1e+21", "Infinity"). Other
// non-string values are stored as their JSON text. A body that is valid JSON
// but not an object has no message.
func ParseMessage(body []byte) (string, error) {
	if !utf8.Valid(body) {
		return "", &ParseError{Err: errors.New("request body is not valid UTF-8")}
	}
	var payload interface{}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		if err == io.EOF {
			err = errUnexpectedEnd
		}
		return "", &ParseError{Err: err}
	}
	if _, err := decoder.Token(); err != io.EOF {
		return "", &ParseError{Err: errTrailingData}
	}
	if payload == nil {
		return "", &ParseError{Err: errNullBody}
	}
	fields, ok := payload.(map[string]interface{})
	if !ok {
		return Fallback, nil
	}
	return messageText(fields["message"])
}

func messageText(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return Fallback, nil
	case string:
		if v == "" {
			return Fallback, nil
		}
		return v, nil
	case bool:
		if !v {
			return Fallback, nil
		}
		return strconv.FormatBool(v), nil
	case json.Number:
		// out of range literals parse to ±Inf, as in JavaScript
		f, _ := strconv.ParseFloat(v.String(), 64)
		if f == 0 {
			return Fallback, nil
		}
		return jsNumber(f), nil
	default:
		// objects and arrays
		encoded := new(bytes.Buffer)
		encoder := json.NewEncoder(encoded)
		encoder.SetEscapeHTML(false)
		if err := encoder.Encode(v); err != nil {
			return "", &ParseError{Err: err}
		}
		return strings.TrimSuffix(encoded.String(), "\n"), nil
	}
}

// jsNumber formats f like JavaScript's Number.prototype.toString: plain
// decimals between 1e-6 and 1e21, shortest exponent notation outside.
func jsNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		return strings.NewReplacer("e+0", "e+", "e-0", "e-").Replace(s)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
