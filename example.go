// MIT License

// Copyright (c) 2023 wetrycode

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package vmwiz

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Values served by the test backend
const (
	TestAuthCookie   string = "auth_token=valid"
	TestRedirectURL  string = "/api/auth/start"
	TestConfirmToken string = "abcdefghij"
	TestSurveyUUID   string = "3f1c2b9e-8d4a-4f6e-9b7a-2c5d1e0f4a6b"
	TestLoginURL     string = "https://keycloak.example.org/realms/vsos/auth"
	TestLoginDone    string = "/console"
)

// TestBackend in process stand in for the vmwiz backend
type TestBackend struct {
	*httptest.Server
	hits sync.Map
}

// Hits number of calls the backend received for path
func (b *TestBackend) Hits(path string) uint64 {
	v, ok := b.hits.Load(path)
	if !ok {
		return 0
	}
	return atomic.LoadUint64(v.(*uint64))
}

// BackendConfig backend location of the test server
func (b *TestBackend) BackendConfig() BackendConfig {
	return TestBackendConfig(b.URL)
}

func (b *TestBackend) count(c *gin.Context) {
	v, _ := b.hits.LoadOrStore(c.Request.URL.Path, new(uint64))
	atomic.AddUint64(v.(*uint64), 1)
	c.Next()
}

// TestBackendConfig split a test server url into a BackendConfig
func TestBackendConfig(rawURL string) BackendConfig {
	u, err := url.Parse(rawURL)
	if err != nil {
		panic(err.Error())
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		panic(err.Error())
	}
	p, _ := strconv.Atoi(port)
	return BackendConfig{Scheme: u.Scheme, Host: host, Port: p}
}

var testOptions = VMOptions{
	Images: []string{"Ubuntu 22.04 - Jammy", "Ubuntu 24.04 - Noble", "Debian 12 - Bookworm", "Debian 13 - Trixie"},
	Cores:  MinMax{Min: 1, Max: 8},
	RamGB:  MinMax{Min: 2, Max: 16},
	DiskGB: MinMax{Min: 15, Max: 100},
}

var testRequests = []VMRequest{
	{
		ID:            1,
		CreatedAt:     time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC),
		RequestStatus: RequestStatusPending,
		Email:         "jdoe@ethz.ch",
		PersonalEmail: "jdoe@example.com",
		Hostname:      "jdoe-lab",
		Image:         "Debian 12 - Bookworm",
		Cores:         2,
		RamGB:         4,
		DiskGB:        20,
		SshPubkeys:    []string{"ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIG0 jdoe"},
	},
	{
		ID:             2,
		CreatedAt:      time.Date(2024, 8, 12, 9, 30, 0, 0, time.UTC),
		RequestStatus:  RequestStatusAccepted,
		Email:          "asmith@uzh.ch",
		PersonalEmail:  "asmith@example.org",
		IsOrganization: true,
		OrgName:        "VSOS",
		Hostname:       "vsos-wiki",
		Image:          "Ubuntu 24.04 - Noble",
		Cores:          4,
		RamGB:          8,
		DiskGB:         40,
		Comments:       "wiki for the association",
	},
}

func authorized(c *gin.Context) bool {
	cookie, err := c.Cookie("auth_token")
	if err != nil || cookie != "valid" {
		c.JSON(http.StatusUnauthorized, UnauthorizedBody{RedirectURL: TestRedirectURL})
		return false
	}
	return true
}

// NewTestBackend start a test backend serving the vmwiz api
func NewTestBackend() *TestBackend {
	gin.SetMode(gin.TestMode)
	backend := &TestBackend{}
	router := gin.New()
	router.Use(backend.count)

	options := func(c *gin.Context) {
		c.JSON(http.StatusOK, testOptions)
	}
	router.GET("/api/vmrequest/options", options)
	router.GET("/api/vmoptions", options)

	list := func(c *gin.Context) {
		if !authorized(c) {
			return
		}
		c.JSON(http.StatusOK, testRequests)
	}
	router.GET("/api/vmrequest", list)
	router.GET("/api/requests", list)

	router.POST("/api/vmrequest", func(c *gin.Context) {
		var form VMRequestForm
		if err := c.ShouldBindJSON(&form); err != nil {
			c.String(http.StatusInternalServerError, "Form body parsing error")
			return
		}
		if form.Hostname == "" {
			c.JSON(http.StatusForbidden, FormValidation{Hostname: "Hostname cannot be empty"})
			return
		}
		c.Status(http.StatusOK)
	})
	router.POST("/api/vmrequest/accept", func(c *gin.Context) {
		if !authorized(c) {
			return
		}
		if c.Query("preview") == "true" {
			c.JSON(http.StatusOK, ConfirmationToken{ConfirmationToken: TestConfirmToken})
			return
		}
		var body RequestID
		if err := c.ShouldBindJSON(&body); err != nil || body.ConfirmationToken != TestConfirmToken {
			c.String(http.StatusBadRequest, "Confirmation token is invalid")
			return
		}
		c.Status(http.StatusOK)
	})
	router.POST("/api/vmrequest/reject", func(c *gin.Context) {
		if !authorized(c) {
			return
		}
		var body RequestID
		if err := c.ShouldBindJSON(&body); err != nil {
			c.String(http.StatusBadRequest, "Invalid request payload")
			return
		}
		if body.ID == 2 {
			c.String(http.StatusInternalServerError, "Cannot reject an accepted request")
			return
		}
		c.Status(http.StatusOK)
	})
	router.POST("/api/vmrequest/edit", func(c *gin.Context) {
		if !authorized(c) {
			return
		}
		var body EditVMRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.String(http.StatusBadRequest, "Invalid request payload")
			return
		}
		c.Status(http.StatusOK)
	})
	router.GET("/api/usagesurvey/", func(c *gin.Context) {
		if !authorized(c) {
			return
		}
		c.JSON(http.StatusOK, SurveyList{Surveys: []int64{1, 2}})
	})
	router.GET("/api/usagesurvey/info", func(c *gin.Context) {
		if !authorized(c) {
			return
		}
		id, err := strconv.ParseInt(c.Query("surveyId"), 10, 64)
		if err != nil {
			c.String(http.StatusBadRequest, "Invalid surveyId provided")
			return
		}
		c.JSON(http.StatusOK, SurveyInfo{
			SurveyID:     id,
			Date:         time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			Positive:     10,
			Negative:     2,
			NotResponded: 3,
			NotSent:      1,
		})
	})

	router.GET("/api/usagesurvey/start", func(c *gin.Context) {
		if !authorized(c) {
			return
		}
		c.JSON(http.StatusOK, SurveyStarted{SurveyID: 3})
	})
	router.POST("/api/usagesurvey/set", func(c *gin.Context) {
		var body SurveyAnswer
		if err := c.ShouldBindJSON(&body); err != nil {
			c.String(http.StatusBadRequest, "Invalid request payload")
			return
		}
		if body.ID != TestSurveyUUID {
			c.String(http.StatusNotFound, "Invalid survey ID")
			return
		}
		c.Status(http.StatusOK)
	})
	router.POST("/api/usagesurvey/resend", func(c *gin.Context) {
		if !authorized(c) {
			return
		}
		var body RequestID
		if err := c.ShouldBindJSON(&body); err != nil {
			c.String(http.StatusBadRequest, "Invalid request payload")
			return
		}
		c.Status(http.StatusOK)
	})
	router.GET("/api/usagesurvey/responses/:kind", func(c *gin.Context) {
		if !authorized(c) {
			return
		}
		if _, err := strconv.Atoi(c.Query("id")); err != nil {
			c.String(http.StatusBadRequest, "Invalid id provided")
			return
		}
		hosts := map[SurveyResponseKind][]string{
			SurveyPositive:     {"jdoe-lab"},
			SurveyNegative:     {"vsos-wiki"},
			SurveyNotSent:      {},
			SurveyNotResponded: {"old-build"},
		}
		list, ok := hosts[SurveyResponseKind(c.Param("kind"))]
		if !ok {
			c.String(http.StatusNotFound, "404 page not found")
			return
		}
		c.JSON(http.StatusOK, list)
	})
	router.GET("/api/auth/start", func(c *gin.Context) {
		c.SetCookie("session_state", "state-1", 0, "/", "", false, true)
		c.Redirect(http.StatusFound, TestLoginURL+"?state=state-1")
	})
	router.GET("/api/auth/callback", func(c *gin.Context) {
		state, err := c.Cookie("session_state")
		if err != nil || state != c.Query("state") || c.Query("code") == "" {
			c.String(http.StatusBadRequest, "Invalid state")
			return
		}
		c.SetCookie("auth_token", "valid", 0, "/", "", false, true)
		c.Redirect(http.StatusFound, TestLoginDone)
	})

	router.Any("/echo/*path", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		header := map[string]string{}
		for k := range c.Request.Header {
			header[k] = c.Request.Header.Get(k)
		}
		c.JSON(http.StatusOK, gin.H{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"query":  c.Request.URL.RawQuery,
			"header": header,
			"body":   string(body),
		})
	})
	router.GET("/status/:code", func(c *gin.Context) {
		code, err := strconv.Atoi(c.Param("code"))
		if err != nil {
			code = http.StatusBadRequest
		}
		c.Header("X-Test", "yes")
		c.String(code, "status %d", code)
	})
	router.GET("/unauthorized/redirect", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, UnauthorizedBody{RedirectURL: "https://x/y"})
	})
	router.GET("/unauthorized/empty", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{})
	})
	router.GET("/unauthorized/text", func(c *gin.Context) {
		c.String(http.StatusUnauthorized, "Your user is not allowed to use this route")
	})
	router.GET("/unauthorized/nobody", func(c *gin.Context) {
		c.Status(http.StatusUnauthorized)
	})
	router.GET("/slow", func(c *gin.Context) {
		time.Sleep(2 * time.Second)
		c.String(http.StatusOK, "slow")
	})
	backend.Server = httptest.NewServer(router)
	return backend
}
