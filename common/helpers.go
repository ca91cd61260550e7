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
package common

import (
	"strings"
)

// NormalizePath removes leading slashes from URL paths so they can be used
// as object names.
func NormalizePath(path string) (object string) {
	return strings.TrimLeft(path, "/")
}

// ObjectPath joins a container prefix and an object name.
func ObjectPath(container, name string) string {
	container = strings.Trim(container, "/")
	if container == "" {
		return name
	}
	return container + "/" + name
}

type ByteCount int

const (
	KB ByteCount = iota
	MB
	GB
)

// AsBytes takes a quantity of the given unit, and returns it in bytes.
func AsBytes(unit ByteCount, quantity int64) int64 {
	switch unit {
	case GB:
		return quantity * 1024 * 1024 * 1024
	case MB:
		return quantity * 1024 * 1024
	default:
		// KB
		return quantity * 1024
	}
}
