package vmwiz

import (
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestNewRequest(t *testing.T) {
	convey.Convey("test request options", t, func() {
		req := NewRequest("/api/vmrequest", "post",
			RequestWithJSONBody(map[string]interface{}{"hostname": "jdoe-lab"}),
			RequestWithCookie(""),
			RequestWithRequestID(""),
			RequestWithParams(map[string]string{"a": "1"}),
			RequestWithParams(map[string]string{"b": "2"}),
		)
		convey.So(req.Method, convey.ShouldEqual, POST)
		convey.So(req.validate(), convey.ShouldBeNil)
		convey.So(string(req.Body), convey.ShouldEqual, `{"hostname":"jdoe-lab"}`)
		convey.So(req.Header.Get("Content-Type"), convey.ShouldEqual, "application/json")
		convey.So(req.Header.Get("Cookie"), convey.ShouldBeEmpty)
		convey.So(req.Header.Get(HeaderRequestID), convey.ShouldBeEmpty)
		convey.So(req.Params, convey.ShouldResemble, map[string]string{"a": "1", "b": "2"})
	})
	convey.Convey("test request method whitelist", t, func() {
		for _, m := range []string{GET, POST, PUT, PATCH, DELETE, OPTIONS, HEAD} {
			convey.So(NewRequest("/", m).validate(), convey.ShouldBeNil)
		}
		err := NewRequest("/", "CONNECT").validate()
		convey.So(errors.Is(err, ErrInvalidMethod), convey.ShouldBeTrue)
	})
}

func TestResponse(t *testing.T) {
	convey.Convey("test response helpers", t, func() {
		response := NewResponse()
		response.Status = 204
		response.Buffer.WriteString(`{"redirectUrl":"/api/auth/start"}`)
		convey.So(response.IsSuccess(), convey.ShouldBeTrue)
		data, err := response.JSON()
		convey.So(err, convey.ShouldBeNil)
		convey.So(data["redirectUrl"], convey.ShouldEqual, "/api/auth/start")
		var body UnauthorizedBody
		convey.So(response.Decode(&body), convey.ShouldBeNil)
		convey.So(body.RedirectURL, convey.ShouldEqual, "/api/auth/start")

		response.Buffer.Reset()
		response.Buffer.WriteString("plain")
		_, err = response.JSON()
		convey.So(err, convey.ShouldNotBeNil)
		convey.So(response.String(), convey.ShouldEqual, "plain")
	})
}
