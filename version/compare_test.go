package version

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCompare(t *testing.T) {
	Convey("Given version pairs", t, func() {
		for _, c := range []struct {
			a, b string
			want int
		}{
			{"1.2.3", "1.2.3", 0},
			{"v1.2.3", "1.2.3", 0},
			{"1.2.4", "1.2.3", 1},
			{"1.3.0", "1.2.9", 1},
			{"0.9.9", "1.0.0", -1},
		} {
			got, err := Compare(c.a, c.b)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, c.want)
		}

		Convey("Garbage input is rejected", func() {
			_, err := Compare("abc", "1.0.0")
			So(err, ShouldNotBeNil)
		})
	})
}
