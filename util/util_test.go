package util

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeFilename(t *testing.T) {
	Convey("SanitizeFilename", t, func() {
		Convey("Should replace invalid chars", func() {
			So(SanitizeFilename("file:name?.txt"), ShouldEqual, "file_name_.txt")
		})
		Convey("Should collapse underscores", func() {
			So(SanitizeFilename("file__name.txt"), ShouldEqual, "file_name.txt")
		})
		Convey("Should trim separators", func() {
			So(SanitizeFilename("-file-name-"), ShouldEqual, "file-name")
		})
	})
}

func TestFormatDuration(t *testing.T) {
	Convey("FormatDuration", t, func() {
		Convey("Should render sub-minute durations in seconds", func() {
			So(FormatDuration(15), ShouldEqual, "15 seconds")
			So(FormatDuration(1), ShouldEqual, "1 second")
		})
		Convey("Should render longer durations in minutes and seconds", func() {
			So(FormatDuration(75), ShouldEqual, "1 minute 15 seconds")
			So(FormatDuration(125), ShouldEqual, "2 minutes 5 seconds")
		})
	})
}

func TestFormatBytes(t *testing.T) {
	Convey("FormatBytes", t, func() {
		So(FormatBytes(512), ShouldEqual, "512 B")
		So(FormatBytes(2048), ShouldEqual, "2.0 KiB")
		So(FormatBytes(1536*1024), ShouldEqual, "1.5 MiB")
	})
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "file", "files"), ShouldEqual, "1 file")
		So(Quantify(2, "file", "files"), ShouldEqual, "2 files")
	})
}

func TestFileStem(t *testing.T) {
	Convey("FileStem", t, func() {
		So(FileStem("path/to/file.txt"), ShouldEqual, "file")
		So(FileStem("file"), ShouldEqual, "file")
	})
}

func TestMaxMin(t *testing.T) {
	Convey("Max/Min", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Min(1, 5, 2), ShouldEqual, 1)
	})
}
