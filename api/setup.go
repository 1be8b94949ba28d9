/**
 * Copyright (c) 2023 wetrycode
 *
 * This software is released under the MIT License.
 * https://opensource.org/licenses/MIT
 */

package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/wetrycode/vmwiz"
)

// requestIDKey gin context key of the request id
const requestIDKey string = "request_id"

type Gin struct {
	Ctx *gin.Context
}

// requestID reuse the caller's X-Request-Id or create one
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(vmwiz.HeaderRequestID)
		if id == "" {
			id = vmwiz.GetUUID()
		}
		c.Set(requestIDKey, id)
		c.Header(vmwiz.HeaderRequestID, id)
		c.Next()
	}
}

// accessLog one log line per handled request
func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := apiLog.WithFields(logrus.Fields{
			"request_id": c.GetString(requestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
		})
		if c.Writer.Status() >= 500 {
			entry.Warn("request handled")
			return
		}
		entry.Debug("request handled")
	}
}

func SetUp() *gin.Engine {
	engine := gin.New()
	engine.RedirectTrailingSlash = false
	engine.Use(gin.Recovery(), requestID(), accessLog())
	return engine
}
