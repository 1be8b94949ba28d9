// Copyright 2022 geebytes
// Licensed under the Apache License, Version 2.0 (the 'License');
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an 'AS IS' BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vmwiz

import (
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/wxnacy/wgo/arrays"
)

// Request method constant definition
const (
	GET     string = "GET"
	POST    string = "POST"
	PUT     string = "PUT"
	PATCH   string = "PATCH"
	DELETE  string = "DELETE"
	OPTIONS string = "OPTIONS"
	HEAD    string = "HEAD"
)

// HeaderRequestID request id header sent to the backend
const HeaderRequestID string = "X-Request-Id"

var allowMethods = []string{GET, POST, PUT, PATCH, DELETE, OPTIONS, HEAD}

// Request a single call to the backend
type Request struct {
	// Path request path relative to the backend base url
	Path string
	// Method http method
	Method string
	// Header request headers
	Header http.Header
	// Body raw request body, nil for no body
	Body []byte
	// Params url query parameters
	Params map[string]string
	// noRedirect return 3xx responses instead of following them
	noRedirect bool
	// err deferred error from building the request
	err error
}

// RequestOption optional parameters of NewRequest
type RequestOption func(r *Request)

// RequestWithJSONBody encode body as json and set the json content type
func RequestWithJSONBody(body interface{}) RequestOption {
	return func(r *Request) {
		data, err := jsoniter.Marshal(body)
		if err != nil {
			r.err = fmt.Errorf("%w: %s", ErrRequestBody, err.Error())
			return
		}
		r.Body = data
		r.Header.Set("Content-Type", "application/json")
	}
}

// RequestWithBytesBody set raw request body
func RequestWithBytesBody(body []byte) RequestOption {
	return func(r *Request) {
		r.Body = body
	}
}

// RequestWithHeader set request headers
func RequestWithHeader(header map[string]string) RequestOption {
	return func(r *Request) {
		for k, v := range header {
			r.Header.Set(k, v)
		}
	}
}

// RequestWithCookie forward a raw Cookie header
func RequestWithCookie(cookie string) RequestOption {
	return func(r *Request) {
		if cookie != "" {
			r.Header.Set("Cookie", cookie)
		}
	}
}

// RequestWithParams set url query parameters
func RequestWithParams(params map[string]string) RequestOption {
	return func(r *Request) {
		if r.Params == nil {
			r.Params = map[string]string{}
		}
		for k, v := range params {
			r.Params[k] = v
		}
	}
}

// RequestWithRequestID set the request id sent to the backend
func RequestWithRequestID(id string) RequestOption {
	return func(r *Request) {
		if id != "" {
			r.Header.Set(HeaderRequestID, id)
		}
	}
}

// RequestWithoutRedirect return a 3xx response as is instead of following it
func RequestWithoutRedirect() RequestOption {
	return func(r *Request) {
		r.noRedirect = true
	}
}

// NewRequest build a request descriptor
func NewRequest(path string, method string, opts ...RequestOption) *Request {
	r := &Request{
		Path:   path,
		Method: strings.ToUpper(method),
		Header: http.Header{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Request) validate() error {
	if r.err != nil {
		return r.err
	}
	if arrays.ContainsString(allowMethods, r.Method) == -1 {
		return fmt.Errorf("%w: %q", ErrInvalidMethod, r.Method)
	}
	return nil
}
