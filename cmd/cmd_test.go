package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/smartystreets/goconvey/convey"
	"github.com/wetrycode/vmwiz"
)

func newTestEnv(t *testing.T) *vmwiz.TestBackend {
	backend := vmwiz.NewTestBackend()
	t.Cleanup(backend.Close)
	config := backend.BackendConfig()
	t.Setenv("UNITTEST", "1")
	t.Setenv("VMWIZ_SCHEME", config.Scheme)
	t.Setenv("VMWIZ_HOSTNAME", config.Host)
	t.Setenv("VMWIZ_PORT", strconv.Itoa(config.Port))
	return backend
}

func runCmd(t *testing.T, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd := newRootCmd()
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append(args, "--config", t.TempDir()))
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestOptionsCmd(t *testing.T) {
	convey.Convey("test options cmd", t, func() {
		newTestEnv(t)
		out, err := runCmd(t, "options")
		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldContainSubstring, "Debian 12 - Bookworm")
		convey.So(out, convey.ShouldContainSubstring, "cores:  1-8")
		convey.So(out, convey.ShouldContainSubstring, "disk:   15-100 GB")
	})
	convey.Convey("test options cmd with legacy paths from settings", t, func() {
		backend := newTestEnv(t)
		dir := t.TempDir()
		settings := []byte("client:\n  legacy_paths: true\ncache:\n  ttl: \"1m\"\n")
		convey.So(os.WriteFile(filepath.Join(dir, "settings.yaml"), settings, 0o644), convey.ShouldBeNil)
		rootCmd := newRootCmd()
		buf := new(bytes.Buffer)
		rootCmd.SetOut(buf)
		rootCmd.SetArgs([]string{"options", "--config", dir})
		convey.So(rootCmd.ExecuteContext(context.Background()), convey.ShouldBeNil)
		convey.So(buf.String(), convey.ShouldContainSubstring, "images:")
		convey.So(backend.Hits("/api/vmoptions"), convey.ShouldEqual, uint64(1))
	})
	convey.Convey("test invalid backend settings", t, func() {
		newTestEnv(t)
		t.Setenv("VMWIZ_SCHEME", "gopher")
		_, err := runCmd(t, "options")
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestRequestsCmd(t *testing.T) {
	convey.Convey("test requests cmd lists pending requests", t, func() {
		newTestEnv(t)
		out, err := runCmd(t, "requests", "--cookie", vmwiz.TestAuthCookie)
		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldContainSubstring, "HOSTNAME")
		convey.So(out, convey.ShouldContainSubstring, "jdoe-lab")
		convey.So(out, convey.ShouldNotContainSubstring, "vsos-wiki")
	})
	convey.Convey("test requests cmd with all", t, func() {
		newTestEnv(t)
		out, err := runCmd(t, "requests", "--all", "--cookie", vmwiz.TestAuthCookie)
		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldContainSubstring, "vsos-wiki")
	})
	convey.Convey("test requests cmd without session", t, func() {
		newTestEnv(t)
		out, err := runCmd(t, "requests")
		convey.So(err, convey.ShouldNotBeNil)
		convey.So(err.Error(), convey.ShouldEqual, "authentication required: "+vmwiz.TestRedirectURL)
		convey.So(out, convey.ShouldContainSubstring, "authentication required")
	})
}

func TestCheckCmd(t *testing.T) {
	convey.Convey("test check cmd", t, func() {
		newTestEnv(t)
		out, err := runCmd(t, "check")
		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldContainSubstring, "options  OK status 200")
		convey.So(out, convey.ShouldContainSubstring, "requests OK authentication required: "+vmwiz.TestRedirectURL)
		convey.So(out, convey.ShouldContainSubstring, "surveys  OK")
	})
	convey.Convey("test check cmd with session cookie", t, func() {
		newTestEnv(t)
		out, err := runCmd(t, "check", "--cookie", vmwiz.TestAuthCookie)
		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldContainSubstring, "requests OK status 200")
	})
	convey.Convey("test check cmd with backend down", t, func() {
		backend := newTestEnv(t)
		backend.Close()
		out, err := runCmd(t, "check")
		convey.So(err, convey.ShouldNotBeNil)
		convey.So(out, convey.ShouldContainSubstring, "options  FAIL")
		convey.So(err.Error(), convey.ShouldContainSubstring, "3 of 3 endpoints failed")
	})
	convey.Convey("test check cmd ignores cached vm options", t, func() {
		backend := newTestEnv(t)
		mockRedis := miniredis.RunT(t)
		convey.So(mockRedis.Set(vmwiz.OptionsKey, `{"image":["Debian 12 - Bookworm"],"cores":{"min":1,"max":8}}`), convey.ShouldBeNil)
		dir := t.TempDir()
		settings := []byte("cache:\n  ttl: \"1m\"\n  redis:\n    addr: \"" + mockRedis.Addr() + "\"\n")
		convey.So(os.WriteFile(filepath.Join(dir, "settings.yaml"), settings, 0o644), convey.ShouldBeNil)
		backend.Close()
		run := func(args ...string) (string, error) {
			buf := new(bytes.Buffer)
			rootCmd := newRootCmd()
			rootCmd.SetOut(buf)
			rootCmd.SetErr(buf)
			rootCmd.SetArgs(append(args, "--config", dir))
			err := rootCmd.ExecuteContext(context.Background())
			return buf.String(), err
		}

		out, err := run("options")
		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldContainSubstring, "Debian 12 - Bookworm")

		out, err = run("check")
		convey.So(err, convey.ShouldNotBeNil)
		convey.So(out, convey.ShouldContainSubstring, "options  FAIL")
		convey.So(out, convey.ShouldNotContainSubstring, "options  OK")
		convey.So(err.Error(), convey.ShouldContainSubstring, "3 of 3 endpoints failed")
	})
}
