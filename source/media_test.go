package source

import (
	"testing"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestIsSupportedURL(t *testing.T) {
	Convey("IsSupportedURL", t, func() {
		Convey("Should accept recognized hosts", func() {
			So(IsSupportedURL("https://tiktok.com/@user/video/123"), ShouldBeTrue)
			So(IsSupportedURL("https://www.tiktok.com/@user/video/123"), ShouldBeTrue)
			So(IsSupportedURL("http://vm.tiktok.com/xyz/"), ShouldBeTrue)
			So(IsSupportedURL("vt.tiktok.com/xyz/"), ShouldBeTrue)
		})

		Convey("Should reject everything else", func() {
			So(IsSupportedURL("https://example.com/video"), ShouldBeFalse)
			So(IsSupportedURL("https://tiktok.evil.com/"), ShouldBeFalse)
			So(IsSupportedURL("not a url"), ShouldBeFalse)
			So(IsSupportedURL(""), ShouldBeFalse)
		})
	})
}

func TestVariant(t *testing.T) {
	Convey("Variant", t, func() {
		Convey("Extension mapping is fixed", func() {
			So(StandardVideo.Extension(), ShouldEqual, ".mp4")
			So(HDVideo.Extension(), ShouldEqual, ".mp4")
			So(CoverImage.Extension(), ShouldEqual, ".jpg")
			So(Music.Extension(), ShouldEqual, ".mp3")
		})

		Convey("ParseVariant roundtrips every member", func() {
			for _, v := range Variants() {
				parsed, err := ParseVariant(v.String())
				So(err, ShouldBeNil)
				So(parsed, ShouldEqual, v)
			}
		})

		Convey("ParseVariant rejects unknown identifiers", func() {
			_, err := ParseVariant("betamax")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestMedia(t *testing.T) {
	Convey("Given a media descriptor", t, func() {
		media := &Media{
			Title:           "Dance",
			Region:          "US",
			DurationSeconds: 15,
			Cover:           mo.Some("http://x/cover.jpg"),
			Variants: map[Variant]mo.Option[string]{
				StandardVideo: mo.Some("http://x/vid.mp4"),
				HDVideo:       mo.None[string](),
				CoverImage:    mo.Some("http://x/cover.jpg"),
				Music:         mo.None[string](),
			},
		}

		Convey("VariantURL distinguishes available from unavailable", func() {
			So(media.VariantURL(StandardVideo).MustGet(), ShouldEqual, "http://x/vid.mp4")
			So(media.VariantURL(HDVideo).IsAbsent(), ShouldBeTrue)
		})

		Convey("VariantURL returns None for unrecognized kinds", func() {
			So(media.VariantURL(Variant("vhs")).IsAbsent(), ShouldBeTrue)
		})

		Convey("Filename combines sanitized title and extension", func() {
			So(media.Filename(StandardVideo), ShouldEqual, "Dance.mp4")
			So(media.Filename(Music), ShouldEqual, "Dance.mp3")

			media.Title = "so/me: weird?title"
			So(media.Filename(CoverImage), ShouldEqual, "so_me_weird_title.jpg")

			media.Title = ""
			So(media.Filename(StandardVideo), ShouldEqual, "untitled.mp4")
		})

		Convey("Duration formats seconds", func() {
			So(media.Duration(), ShouldEqual, "15 seconds")
		})
	})
}
