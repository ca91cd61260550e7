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
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DomZippilli/gcs-save-message/common"
	"github.com/rs/zerolog"
)

// fakeStorage records writes, failing them with err when it is set.
type fakeStorage struct {
	mu      sync.Mutex
	err     error
	paths   []string
	content []string
	ids     []string
}

func (f *fakeStorage) Write(ctx context.Context, path string, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	f.content = append(f.content, content)
	f.ids = append(f.ids, common.Invocation(ctx))
	return f.err
}

var fixedTime = time.Date(2024, 3, 5, 7, 8, 9, 123456789, time.UTC)

func fixedClock() time.Time {
	return fixedTime
}

func newTestHandler(storage BlobWriter) *Handler {
	return New(storage, zerolog.Nop(), WithClock(fixedClock))
}

// TestHandle runs the request/response scenarios, checking status, body and
// what reached storage.
func TestHandle(t *testing.T) {
	type TestCase struct {
		name        string
		body        string
		storageErr  error
		wantStatus  int
		wantBody    interface{}
		wantContent string
		wantWrite   bool
	}

	tcs := []TestCase{
		{
			name:        "message",
			body:        `{"message":"hello"}`,
			wantStatus:  http.StatusOK,
			wantBody:    SuccessBody{Message: "Message saved successfully!", Details: "hello"},
			wantContent: "hello",
			wantWrite:   true,
		},
		{
			name:        "no message",
			body:        `{}`,
			wantStatus:  http.StatusOK,
			wantBody:    SuccessBody{Message: "Message saved successfully!", Details: "No message provided"},
			wantContent: "No message provided",
			wantWrite:   true,
		},
		{
			name:        "empty message",
			body:        `{"message":""}`,
			wantStatus:  http.StatusOK,
			wantBody:    SuccessBody{Message: "Message saved successfully!", Details: "No message provided"},
			wantContent: "No message provided",
			wantWrite:   true,
		},
		{
			name:       "storage failure",
			body:       `{"message":"hello"}`,
			storageErr: errors.New("disk full"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   FailureBody{Error: "Error writing message to blob", Details: "disk full"},
			wantWrite:  true,
		},
	}

	for _, tc := range tcs {
		storage := &fakeStorage{err: tc.storageErr}
		resp := newTestHandler(storage).Handle(context.Background(), []byte(tc.body))
		if resp.Status != tc.wantStatus {
			t.Fatalf("%v: got: %v, want: %v", tc.name, resp.Status, tc.wantStatus)
		}
		if resp.Body != tc.wantBody {
			t.Fatalf("%v: got: %+v, want: %+v", tc.name, resp.Body, tc.wantBody)
		}
		if !tc.wantWrite {
			continue
		}
		if len(storage.paths) != 1 {
			t.Fatalf("%v: got: %v writes, want: 1", tc.name, len(storage.paths))
		}
		if got, want := storage.paths[0], "samples-workitems/2024-03-05T07-08-09-123Z.txt"; got != want {
			t.Fatalf("%v: got: %v, want: %v", tc.name, got, want)
		}
		if tc.storageErr == nil && storage.content[0] != tc.wantContent {
			t.Fatalf("%v: got: %v, want: %v", tc.name, storage.content[0], tc.wantContent)
		}
		if storage.ids[0] == "" {
			t.Fatalf("%v: storage did not receive an invocation id", tc.name)
		}
	}
}

func TestHandleInvalidInput(t *testing.T) {
	bodies := []string{"not-json", "", `{"message":`, "null", "{\"message\":\"\xff\"}", `{} x`, `{}}`, `{} {}`}
	for _, body := range bodies {
		storage := &fakeStorage{}
		resp := newTestHandler(storage).Handle(context.Background(), []byte(body))
		if resp.Status != http.StatusBadRequest {
			t.Fatalf("%q: got: %v, want: %v", body, resp.Status, http.StatusBadRequest)
		}
		fb, ok := resp.Body.(FailureBody)
		if !ok {
			t.Fatalf("%q: got body %T, want FailureBody", body, resp.Body)
		}
		if fb.Error != "Invalid input" {
			t.Fatalf("%q: got: %v, want: %v", body, fb.Error, "Invalid input")
		}
		if fb.Details == "" {
			t.Fatalf("%q: expected parse error details", body)
		}
		if len(storage.paths) != 0 {
			t.Fatalf("%q: storage was written on invalid input", body)
		}
	}
}

func TestParseMessage(t *testing.T) {
	type TestCase struct {
		body string
		want string
	}

	tcs := []TestCase{
		{`{"message":"hello"}`, "hello"},
		{`{"message":"<b>&</b>"}`, "<b>&</b>"},
		{`{"other":"hello"}`, Fallback},
		{`{"message":null}`, Fallback},
		{`{"message":false}`, Fallback},
		{`{"message":0}`, Fallback},
		{`{"message":true}`, "true"},
		{`{"message":42}`, "42"},
		{`{"message":2.5}`, "2.5"},
		{`{"message":-0}`, Fallback},
		{`{"message":0.0}`, Fallback},
		{`{"message":1e-400}`, Fallback},
		{`{"message":1e20}`, "100000000000000000000"},
		{`{"message":1e21}`, "1e+21"},
		{`{"message":-1e21}`, "-1e+21"},
		{`{"message":0.000001}`, "0.000001"},
		{`{"message":1.5e-7}`, "1.5e-7"},
		{`{"message":1e400}`, "Infinity"},
		{`{"message":-1e400}`, "-Infinity"},
		{` {"message":"padded"} `, "padded"},
		{`{"message":{"b":1,"a":"x"}}`, `{"a":"x","b":1}`},
		{`{"message":["a",1]}`, `["a",1]`},
		{`["message"]`, Fallback},
		{`"message"`, Fallback},
		{`7`, Fallback},
	}

	for _, tc := range tcs {
		got, err := ParseMessage([]byte(tc.body))
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", tc.body, err)
		}
		if got != tc.want {
			t.Fatalf("%v: got: %v, want: %v", tc.body, got, tc.want)
		}
	}
}

func TestParseMessageErrors(t *testing.T) {
	_, err := ParseMessage([]byte("not-json"))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("got: %v, want a *ParseError", err)
	}
	_, err = ParseMessage([]byte("null"))
	if !errors.Is(err, errNullBody) {
		t.Fatalf("got: %v, want: %v", err, errNullBody)
	}
	_, err = ParseMessage([]byte(""))
	if !errors.Is(err, errUnexpectedEnd) {
		t.Fatalf("got: %v, want: %v", err, errUnexpectedEnd)
	}
	_, err = ParseMessage([]byte(`{"message":"a"} trailing`))
	if !errors.Is(err, errTrailingData) {
		t.Fatalf("got: %v, want: %v", err, errTrailingData)
	}
}

func TestObjectName(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}-\d{3}Z\.txt$`)

	if got, want := ObjectName(fixedTime), "2024-03-05T07-08-09-123Z.txt"; got != want {
		t.Fatalf("got: %v, want: %v", got, want)
	}
	// whole seconds still carry milliseconds
	if got, want := ObjectName(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), "2024-01-01T00-00-00-000Z.txt"; got != want {
		t.Fatalf("got: %v, want: %v", got, want)
	}
	// local times are converted to UTC
	local := time.Date(2024, 1, 1, 10, 30, 0, 0, time.FixedZone("AEDT", 11*60*60))
	if got, want := ObjectName(local), "2023-12-31T23-30-00-000Z.txt"; got != want {
		t.Fatalf("got: %v, want: %v", got, want)
	}
	for i := 0; i < 100; i++ {
		name := ObjectName(time.Now())
		if !pattern.MatchString(name) {
			t.Fatalf("got: %v, want a match for %v", name, pattern)
		}
	}
}

func TestServeHTTP(t *testing.T) {
	storage := &fakeStorage{}
	h := newTestHandler(storage)

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":"hello"}`))
	recorder := httptest.NewRecorder()
	h.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("got: %v, want: %v", recorder.Code, http.StatusOK)
	}
	if got := recorder.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("got: %v, want: %v", got, "application/json")
	}
	if got, want := recorder.Body.String(), `{"message":"Message saved successfully!","details":"hello"}`; got != want {
		t.Fatalf("got: %v, want: %v", got, want)
	}
}

func TestServeHTTPInvalidInput(t *testing.T) {
	h := newTestHandler(&fakeStorage{})

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not-json"))
	recorder := httptest.NewRecorder()
	h.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("got: %v, want: %v", recorder.Code, http.StatusBadRequest)
	}
	var body FailureBody
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "Invalid input" {
		t.Fatalf("got: %v, want: %v", body.Error, "Invalid input")
	}
}

func TestServeHTTPBodyTooLarge(t *testing.T) {
	storage := &fakeStorage{}
	h := New(storage, zerolog.Nop(), WithClock(fixedClock), WithMaxBodyBytes(8))

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":"far too long"}`))
	recorder := httptest.NewRecorder()
	h.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("got: %v, want: %v", recorder.Code, http.StatusBadRequest)
	}
	if len(storage.paths) != 0 {
		t.Fatal("storage was written for an oversized body")
	}
}

func TestWithContainer(t *testing.T) {
	storage := &fakeStorage{}
	h := New(storage, zerolog.Nop(), WithClock(fixedClock), WithContainer("inbox"))
	h.Handle(context.Background(), []byte(`{"message":"hello"}`))
	if got, want := storage.paths[0], "inbox/2024-03-05T07-08-09-123Z.txt"; got != want {
		t.Fatalf("got: %v, want: %v", got, want)
	}
}
