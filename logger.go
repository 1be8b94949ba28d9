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
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger = logrus.New()

// ProcessId identifies this process in every log line
var ProcessId string = GetUUID()

type DefaultFieldHook struct {
}

func (hook *DefaultFieldHook) Fire(entry *logrus.Entry) error {
	name, _ := os.Hostname()
	entry.Data["hostname"] = name
	entry.Data["processId"] = ProcessId
	return nil
}

func (hook *DefaultFieldHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// GetLogger get a logger entry tagged with the component name
func GetLogger(name string) *logrus.Entry {
	log := logger.WithFields(logrus.Fields{
		"logName": name,
	})
	return log
}

// InitLog configure the shared logger.
// An empty level means info, UNITTEST in the environment forces error.
func InitLog(level string) error {
	_, ex := os.LookupEnv("UNITTEST")
	if ex {
		level = "error"
	}
	level = strings.TrimSpace(level)
	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, level)
	}
	logger.SetLevel(parsed)
	return nil
}

// GetLogLevel the active log level
func GetLogLevel() string {
	return logger.GetLevel().String()
}

func initLog() {
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{
		ForceQuote:      true,
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	logger.Hooks.Add(&DefaultFieldHook{})
	if err := InitLog(os.Getenv("VMWIZ_LOG_LEVEL")); err != nil {
		logger.SetLevel(logrus.InfoLevel)
	}
}
