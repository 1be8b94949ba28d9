package vmwiz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/smartystreets/goconvey/convey"
)

func TestJoinURL(t *testing.T) {
	convey.Convey("test join url with one slash", t, func() {
		convey.So(JoinURL("http://localhost:8081", "/api/vmrequest", nil), convey.ShouldEqual, "http://localhost:8081/api/vmrequest")
		convey.So(JoinURL("http://localhost:8081/", "/api/vmrequest", nil), convey.ShouldEqual, "http://localhost:8081/api/vmrequest")
		convey.So(JoinURL("http://localhost:8081", "api/vmrequest", nil), convey.ShouldEqual, "http://localhost:8081/api/vmrequest")
		convey.So(JoinURL("http://localhost:8081", "", nil), convey.ShouldEqual, "http://localhost:8081")
		convey.So(JoinURL("http://localhost:8081", "/api/usagesurvey/", nil), convey.ShouldEqual, "http://localhost:8081/api/usagesurvey/")
	})
	convey.Convey("test join url keeps query", t, func() {
		convey.So(JoinURL("http://localhost:8081", "/api/vmrequest/accept?preview=true", nil), convey.ShouldEqual, "http://localhost:8081/api/vmrequest/accept?preview=true")
		u := JoinURL("http://localhost:8081", "/api/vmrequest/accept?preview=true", map[string]string{"id": "3"})
		convey.So(u, convey.ShouldEqual, "http://localhost:8081/api/vmrequest/accept?preview=true&id=3")
		u = JoinURL("http://localhost:8081", "/api/usagesurvey/info", map[string]string{"surveyId": "7"})
		convey.So(u, convey.ShouldEqual, "http://localhost:8081/api/usagesurvey/info?surveyId=7")
	})
}

func TestGetUUID(t *testing.T) {
	convey.Convey("test uuid", t, func() {
		id := GetUUID()
		_, err := uuid.Parse(id)
		convey.So(err, convey.ShouldBeNil)
		convey.So(GetUUID(), convey.ShouldNotEqual, id)
	})
}
