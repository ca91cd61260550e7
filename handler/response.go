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
	"encoding/json"
	"net/http"
)

const (
	savedMessage = "Message saved successfully!"
	invalidInput = "Invalid input"
	writeFailed  = "Error writing message to blob"
)

// SuccessBody is the JSON body of a 200 response.
type SuccessBody struct {
	Message string `json:"message"`
	Details string `json:"details"`
}

// FailureBody is the JSON body of a 400 or 500 response.
type FailureBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Response is the single, terminal result of an invocation.
type Response struct {
	Status int
	Body   interface{}
}

func success(message string) Response {
	return Response{
		Status: http.StatusOK,
		Body:   SuccessBody{Message: savedMessage, Details: message},
	}
}

func failure(status int, msg string, err error) Response {
	return Response{
		Status: status,
		Body:   FailureBody{Error: msg, Details: err.Error()},
	}
}

// Write sends the response as JSON.
func (r Response) Write(w http.ResponseWriter) error {
	body, err := json.Marshal(r.Body)
	if err != nil {
		http.Error(w, "", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.Status)
	_, err = w.Write(body)
	return err
}
