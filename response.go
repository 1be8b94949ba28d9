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
	"bytes"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// Response the backend response data
type Response struct {
	Status int         // Status response status code
	Header http.Header // Header response header
	Delay  float64     // Delay seconds spent on the call
	URL    string      // URL of request url
	Buffer *bytes.Buffer
}

var respLog *logrus.Entry = GetLogger("response")

// JSON deserialize the response body to a json object
func (r *Response) JSON() (map[string]interface{}, error) {
	jsonResp := map[string]interface{}{}
	err := jsoniter.Unmarshal(r.Buffer.Bytes(), &jsonResp)
	if err != nil {
		respLog.Errorf("Get json response error %s", err.Error())
		return nil, err
	}
	return jsonResp, nil
}

// Decode deserialize the response body into v
func (r *Response) Decode(v interface{}) error {
	return jsoniter.Unmarshal(r.Buffer.Bytes(), v)
}

// String get response text from response body
func (r *Response) String() string {
	return r.Buffer.String()
}

// Bytes get the raw response body
func (r *Response) Bytes() []byte {
	return r.Buffer.Bytes()
}

// IsSuccess status code is 2xx
func (r *Response) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

// NewResponse create an empty Response
func NewResponse() *Response {
	return &Response{
		Header: http.Header{},
		Buffer: new(bytes.Buffer),
	}
}
