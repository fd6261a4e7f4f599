package history

import (
	"testing"

	"github.com/samber/mo"
	"github.com/tokgrab-cli/tokgrab/filesystem"
	"github.com/tokgrab-cli/tokgrab/source"
	"github.com/tokgrab-cli/tokgrab/transfer"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func record(title, link string, timestamp int64) *Saved {
	media := &source.Media{
		Title:    title,
		Variants: map[source.Variant]mo.Option[string]{},
	}
	saved := newSaved(media, link, source.StandardVideo, transfer.Outcome{
		Path:  title + ".mp4",
		Bytes: 1024,
	})
	saved.Timestamp = timestamp
	return saved
}

func TestHistory(t *testing.T) {
	Convey("Given a completed download", t, func() {
		media := &source.Media{
			Title:    "dancing cat",
			Variants: map[source.Variant]mo.Option[string]{},
		}
		outcome := transfer.Outcome{Path: "dancing cat.mp4", Bytes: 2048}

		Convey("When saving it", func() {
			err := Save(media, "https://tiktok.com/@a/video/1", source.StandardVideo, outcome)

			Convey("Then it can be read back", func() {
				So(err, ShouldBeNil)

				saved, err := Get()
				So(err, ShouldBeNil)
				So(len(saved), ShouldBeGreaterThan, 0)

				got := saved["https://tiktok.com/@a/video/1 (video)"]
				So(got, ShouldNotBeNil)
				So(got.Title, ShouldEqual, "dancing cat")
				So(got.Bytes, ShouldEqual, 2048)

				Convey("And removing it leaves no trace", func() {
					So(Remove(got), ShouldBeNil)

					saved, err := Get()
					So(err, ShouldBeNil)
					_, exists := saved["https://tiktok.com/@a/video/1 (video)"]
					So(exists, ShouldBeFalse)
				})
			})
		})
	})
}

func TestListAndSearch(t *testing.T) {
	Convey("Given several stored records", t, func() {
		records := map[string]*Saved{}
		for _, r := range []*Saved{
			record("morning routine", "https://tiktok.com/@a/video/10", 100),
			record("cooking pasta", "https://tiktok.com/@b/video/11", 300),
			record("cooking ramen", "https://tiktok.com/@c/video/12", 200),
		} {
			records[r.encode()] = r
		}
		So(cacher.Set(records), ShouldBeNil)

		Convey("List orders them newest first", func() {
			listed, err := List()
			So(err, ShouldBeNil)
			So(len(listed), ShouldBeGreaterThanOrEqualTo, 3)
			for i := 1; i < len(listed); i++ {
				So(listed[i].Timestamp, ShouldBeLessThanOrEqualTo, listed[i-1].Timestamp)
			}
		})

		Convey("Search narrows down by title", func() {
			found, err := Search("cooking")
			So(err, ShouldBeNil)
			So(len(found), ShouldEqual, 2)
			for _, r := range found {
				So(r.Title, ShouldContainSubstring, "cooking")
			}
		})

		Convey("A blank query returns everything", func() {
			found, err := Search("   ")
			So(err, ShouldBeNil)
			So(len(found), ShouldBeGreaterThanOrEqualTo, 3)
		})
	})
}
