package vmwiz

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
)

func newTestClient(t *testing.T, opts ...ClientOption) (*Client, *TestBackend) {
	gateway, backend := newTestGateway(t)
	return NewClient(gateway, opts...), backend
}

var auth = RequestWithCookie(TestAuthCookie)

func TestClientOptions(t *testing.T) {
	convey.Convey("test fetch vm options", t, func() {
		client, backend := newTestClient(t)
		res, err := client.FetchVMOptions(context.Background())
		convey.So(err, convey.ShouldBeNil)
		options, err := DecodeVMOptions(res)
		convey.So(err, convey.ShouldBeNil)
		convey.So(options.Images, convey.ShouldContain, "Debian 12 - Bookworm")
		convey.So(options.Cores.Max, convey.ShouldEqual, 8)
		convey.So(options.DiskGB.Min, convey.ShouldEqual, 15)
		convey.So(backend.Hits(CurrentPaths.Options), convey.ShouldEqual, uint64(1))
	})
	convey.Convey("test legacy paths", t, func() {
		client, backend := newTestClient(t, ClientWithLegacyPaths(true))
		convey.So(client.Paths(), convey.ShouldResemble, LegacyPaths)
		res, err := client.FetchVMOptions(context.Background())
		convey.So(err, convey.ShouldBeNil)
		convey.So(res.Response.Status, convey.ShouldEqual, http.StatusOK)
		convey.So(backend.Hits("/api/vmoptions"), convey.ShouldEqual, uint64(1))
		convey.So(backend.Hits(CurrentPaths.Options), convey.ShouldEqual, uint64(0))

		res, err = client.FetchRequests(context.Background(), auth)
		convey.So(err, convey.ShouldBeNil)
		requests, err := DecodeVMRequests(res)
		convey.So(err, convey.ShouldBeNil)
		convey.So(requests, convey.ShouldHaveLength, 2)
		convey.So(backend.Hits("/api/requests"), convey.ShouldEqual, uint64(1))
	})
	convey.Convey("test cached vm options skip the backend", t, func() {
		client, backend := newTestClient(t, ClientWithOptionsCache(NewMemoryOptionsCache(time.Minute)))
		for i := 0; i < 3; i++ {
			res, err := client.FetchVMOptions(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Response.Status, convey.ShouldEqual, http.StatusOK)
			options, err := DecodeVMOptions(res)
			convey.So(err, convey.ShouldBeNil)
			convey.So(options.RamGB.Max, convey.ShouldEqual, 16)
		}
		convey.So(backend.Hits(CurrentPaths.Options), convey.ShouldEqual, uint64(1))
	})
	convey.Convey("test failed vm options are not cached", t, func() {
		cache := NewMemoryOptionsCache(time.Minute)
		client, _ := newTestClient(t,
			ClientWithOptionsCache(cache),
			ClientWithPaths(EndpointPaths{Options: "/status/500"}),
		)
		res, err := client.FetchVMOptions(context.Background())
		convey.So(err, convey.ShouldBeNil)
		convey.So(res.Response.Status, convey.ShouldEqual, http.StatusInternalServerError)
		_, ok := cache.Get(context.Background())
		convey.So(ok, convey.ShouldBeFalse)
		_, err = DecodeVMOptions(res)
		convey.So(errors.Is(err, ErrUnexpectedStatus), convey.ShouldBeTrue)
	})
	convey.Convey("test truncated vm options are not cached", t, func() {
		gateway, err := NewGateway(newTruncatingBackend(t))
		convey.So(err, convey.ShouldBeNil)
		cache := NewMemoryOptionsCache(time.Minute)
		client := NewClient(gateway, ClientWithOptionsCache(cache))
		res, err := client.FetchVMOptions(context.Background())
		convey.So(res, convey.ShouldBeNil)
		convey.So(errors.Is(err, ErrResponseRead), convey.ShouldBeTrue)
		_, ok := cache.Get(context.Background())
		convey.So(ok, convey.ShouldBeFalse)
	})
}

func TestClientRequests(t *testing.T) {
	convey.Convey("test list requests", t, func() {
		client, _ := newTestClient(t)
		res, err := client.FetchRequests(context.Background(), auth)
		convey.So(err, convey.ShouldBeNil)
		requests, err := DecodeVMRequests(res)
		convey.So(err, convey.ShouldBeNil)
		convey.So(requests, convey.ShouldHaveLength, 2)
		convey.So(requests[0].IsPending(), convey.ShouldBeTrue)
		convey.So(requests[1].IsPending(), convey.ShouldBeFalse)
		convey.So(requests[1].OrgName, convey.ShouldEqual, "VSOS")
	})
	convey.Convey("test list requests without session", t, func() {
		client, _ := newTestClient(t)
		res, err := client.FetchRequests(context.Background())
		convey.So(err, convey.ShouldBeNil)
		convey.So(res.SessionExpired(), convey.ShouldBeTrue)
		convey.So(res.RedirectURL, convey.ShouldEqual, TestRedirectURL)
		_, err = DecodeVMRequests(res)
		convey.So(errors.Is(err, ErrSessionExpired), convey.ShouldBeTrue)
	})
	convey.Convey("test submit a vm request", t, func() {
		client, _ := newTestClient(t)
		form := &VMRequestForm{
			Email:       "jdoe@ethz.ch",
			Hostname:    "jdoe-lab",
			Image:       "Debian 12 - Bookworm",
			Cores:       2,
			RamGB:       4,
			DiskGB:      20,
			AcceptTerms: true,
		}
		res, err := client.SendVMRequest(context.Background(), form)
		convey.So(err, convey.ShouldBeNil)
		convey.So(res.Response.Status, convey.ShouldEqual, http.StatusOK)
		validation, err := DecodeFormValidation(res)
		convey.So(err, convey.ShouldBeNil)
		convey.So(validation, convey.ShouldBeNil)
	})
	convey.Convey("test submit an invalid vm request", t, func() {
		client, _ := newTestClient(t)
		res, err := client.SendVMRequest(context.Background(), &VMRequestForm{Email: "jdoe@ethz.ch"})
		convey.So(err, convey.ShouldBeNil)
		convey.So(res.Response.Status, convey.ShouldEqual, http.StatusForbidden)
		validation, err := DecodeFormValidation(res)
		convey.So(err, convey.ShouldBeNil)
		convey.So(validation.Hostname, convey.ShouldEqual, "Hostname cannot be empty")
	})
}

func TestClientAdmin(t *testing.T) {
	convey.Convey("test accept with preview token", t, func() {
		client, _ := newTestClient(t)
		res, err := client.PreviewAccept(context.Background(), 1, auth)
		convey.So(err, convey.ShouldBeNil)
		token, err := DecodeConfirmationToken(res)
		convey.So(err, convey.ShouldBeNil)
		convey.So(token, convey.ShouldEqual, TestConfirmToken)

		res, err = client.AcceptVMRequest(context.Background(), 1, token, auth)
		convey.So(err, convey.ShouldBeNil)
		convey.So(res.Response.Status, convey.ShouldEqual, http.StatusOK)

		res, err = client.AcceptVMRequest(context.Background(), 1, "wrong", auth)
		convey.So(err, convey.ShouldBeNil)
		convey.So(res.Response.Status, convey.ShouldEqual, http.StatusBadRequest)
	})
	convey.Convey("test reject", t, func() {
		client, _ := newTestClient(t)
		res, err := client.RejectVMRequest(context.Background(), 1, auth)
		convey.So(err, convey.ShouldBeNil)
		convey.So(res.Response.Status, convey.ShouldEqual, http.StatusOK)

		res, err = client.RejectVMRequest(context.Background(), 2, auth)
		convey.So(err, convey.ShouldBeNil)
		convey.So(res.Kind, convey.ShouldEqual, ResultSuccess)
		convey.So(res.Response.Status, convey.ShouldEqual, http.StatusInternalServerError)
	})
	convey.Convey("test edit", t, func() {
		client, _ := newTestClient(t)
		res, err := client.EditVMRequest(context.Background(), EditVMRequest{ID: 1, CoresCPU: 4}, auth)
		convey.So(err, convey.ShouldBeNil)
		convey.So(res.Response.Status, convey.ShouldEqual, http.StatusOK)
	})
	convey.Convey("test surveys", t, func() {
		client, _ := newTestClient(t)
		res, err := client.FetchSurveys(context.Background(), auth)
		convey.So(err, convey.ShouldBeNil)
		surveys, err := DecodeSurveys(res)
		convey.So(err, convey.ShouldBeNil)
		convey.So(surveys.Surveys, convey.ShouldResemble, []int64{1, 2})

		res, err = client.FetchSurveyInfo(context.Background(), 2, auth)
		convey.So(err, convey.ShouldBeNil)
		info, err := DecodeSurveyInfo(res)
		convey.So(err, convey.ShouldBeNil)
		convey.So(info.SurveyID, convey.ShouldEqual, int64(2))
		convey.So(info.Positive, convey.ShouldEqual, 10)
	})
}

func TestClientSurveyActions(t *testing.T) {
	convey.Convey("test start a survey", t, func() {
		client, backend := newTestClient(t)
		res, err := client.StartSurvey(context.Background(), auth)
		convey.So(err, convey.ShouldBeNil)
		id, err := DecodeSurveyStarted(res)
		convey.So(err, convey.ShouldBeNil)
		convey.So(id, convey.ShouldEqual, int64(3))
		convey.So(backend.Hits(CurrentPaths.SurveyStart), convey.ShouldEqual, uint64(1))

		res, err = client.StartSurvey(context.Background())
		convey.So(err, convey.ShouldBeNil)
		convey.So(res.SessionExpired(), convey.ShouldBeTrue)
	})
	convey.Convey("test set a survey response without session", t, func() {
		client, _ := newTestClient(t)
		res, err := client.SetSurveyResponse(context.Background(), SurveyAnswer{ID: TestSurveyUUID, Keep: true})
		convey.So(err, convey.ShouldBeNil)
		convey.So(res.Response.Status, convey.ShouldEqual, http.StatusOK)

		res, err = client.SetSurveyResponse(context.Background(), SurveyAnswer{ID: GetUUID(), Keep: false})
		convey.So(err, convey.ShouldBeNil)
		convey.So(res.Response.Status, convey.ShouldEqual, http.StatusNotFound)
		convey.So(string(res.Response.Bytes()), convey.ShouldEqual, "Invalid survey ID")
	})
	convey.Convey("test resend a survey", t, func() {
		client, backend := newTestClient(t)
		res, err := client.ResendSurvey(context.Background(), 3, auth)
		convey.So(err, convey.ShouldBeNil)
		convey.So(res.Response.Status, convey.ShouldEqual, http.StatusOK)
		convey.So(backend.Hits(CurrentPaths.SurveyResend), convey.ShouldEqual, uint64(1))
	})
	convey.Convey("test survey responses per kind", t, func() {
		client, backend := newTestClient(t)
		res, err := client.FetchSurveyResponses(context.Background(), 2, SurveyPositive, auth)
		convey.So(err, convey.ShouldBeNil)
		hosts, err := DecodeSurveyHosts(res)
		convey.So(err, convey.ShouldBeNil)
		convey.So(hosts, convey.ShouldResemble, []string{"jdoe-lab"})
		convey.So(res.Response.URL, convey.ShouldEndWith, "/api/usagesurvey/responses/positive?id=2")

		res, err = client.FetchSurveyResponses(context.Background(), 2, SurveyNotSent, auth)
		convey.So(err, convey.ShouldBeNil)
		hosts, err = DecodeSurveyHosts(res)
		convey.So(err, convey.ShouldBeNil)
		convey.So(hosts, convey.ShouldBeEmpty)

		for _, kind := range SurveyResponseKinds {
			convey.So(kind.Valid(), convey.ShouldBeTrue)
		}
		_, err = client.FetchSurveyResponses(context.Background(), 2, SurveyResponseKind("maybe"), auth)
		convey.So(errors.Is(err, ErrRequestBody), convey.ShouldBeTrue)
		convey.So(backend.Hits("/api/usagesurvey/responses/maybe"), convey.ShouldEqual, uint64(0))
	})
}

func TestDecodeResult(t *testing.T) {
	convey.Convey("test decode empty result", t, func() {
		_, err := DecodeVMOptions(nil)
		convey.So(errors.Is(err, ErrUnexpectedStatus), convey.ShouldBeTrue)
	})
	convey.Convey("test decode non json body", t, func() {
		res := cachedResult("http://localhost:8081/api/vmrequest/options", []byte("not json"))
		_, err := DecodeVMOptions(res)
		convey.So(err, convey.ShouldNotBeNil)
	})
	convey.Convey("test status error", t, func() {
		response := NewResponse()
		response.Status = http.StatusNotFound
		response.Buffer.WriteString("404 page not found")
		_, err := DecodeSurveys(&Result{Kind: ResultSuccess, Response: response})
		var statusErr *StatusError
		convey.So(errors.As(err, &statusErr), convey.ShouldBeTrue)
		convey.So(statusErr.Status, convey.ShouldEqual, http.StatusNotFound)
		convey.So(err.Error(), convey.ShouldContainSubstring, "404 page not found")
	})
}
