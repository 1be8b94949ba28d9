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
	"net/url"
	"strings"

	"github.com/google/uuid"
)

func GetUUID() string {
	u4 := uuid.New()
	uuid := u4.String()
	return uuid

}

// JoinURL join the base url and a request path with exactly one slash.
// params is appended to the query string, keeping any query already in path.
func JoinURL(base string, path string, params map[string]string) string {
	u := strings.TrimRight(base, "/")
	if path != "" {
		u = u + "/" + strings.TrimLeft(path, "/")
	}
	if len(params) == 0 {
		return u
	}
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + values.Encode()
}
