package vmwiz

import (
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestDefaultRoutes(t *testing.T) {
	convey.Convey("test default route table", t, func() {
		routes := DefaultRoutes()
		convey.So(routes.All(), convey.ShouldHaveLength, 3)

		home, err := routes.Resolve("/")
		convey.So(err, convey.ShouldBeNil)
		convey.So(home.Name, convey.ShouldEqual, "home")
		convey.So(home.View, convey.ShouldEqual, "FormView")
		convey.So(routes.Title("/"), convey.ShouldEqual, "Request a VM")

		admin, err := routes.Resolve("/console")
		convey.So(err, convey.ShouldBeNil)
		convey.So(admin.View, convey.ShouldEqual, "AdminConsoleView")
		convey.So(routes.Title("/console"), convey.ShouldEqual, "Admin Console")
		convey.So(routes.Title("/survey"), convey.ShouldEqual, "Usage Survey")
	})
	convey.Convey("test trailing slash and query are ignored", t, func() {
		routes := DefaultRoutes()
		for _, path := range []string{"/console/", "console", "/console?tab=pending", "/console#top"} {
			route, err := routes.Resolve(path)
			convey.So(err, convey.ShouldBeNil)
			convey.So(route.Name, convey.ShouldEqual, "admin")
		}
	})
	convey.Convey("test unknown path", t, func() {
		routes := DefaultRoutes()
		_, err := routes.Resolve("/unknown")
		convey.So(errors.Is(err, ErrRouteNotFound), convey.ShouldBeTrue)
		convey.So(routes.Title("/unknown"), convey.ShouldEqual, DefaultTitle)
	})
}

func TestNewRoutes(t *testing.T) {
	convey.Convey("test duplicate route", t, func() {
		_, err := NewRoutes(
			Route{Path: "/console", Name: "admin"},
			Route{Path: "/console/", Name: "admin2"},
		)
		convey.So(errors.Is(err, ErrDuplicateRoute), convey.ShouldBeTrue)
	})
	convey.Convey("test empty route path", t, func() {
		_, err := NewRoutes(Route{Path: " ", Name: "blank"})
		convey.So(errors.Is(err, ErrEmptyRoutePath), convey.ShouldBeTrue)
	})
	convey.Convey("test fallback title", t, func() {
		routes, err := NewRoutes(Route{Path: "/about/", Name: "about"})
		convey.So(err, convey.ShouldBeNil)
		convey.So(routes.Title("/about"), convey.ShouldEqual, DefaultTitle)
		convey.So(routes.All()[0].Path, convey.ShouldEqual, "/about")
	})
	convey.Convey("test normalize route path", t, func() {
		convey.So(NormalizeRoutePath(""), convey.ShouldEqual, "/")
		convey.So(NormalizeRoutePath("/"), convey.ShouldEqual, "/")
		convey.So(NormalizeRoutePath("//survey//"), convey.ShouldEqual, "/survey")
	})
}
