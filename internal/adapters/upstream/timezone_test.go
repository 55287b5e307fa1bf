package upstream

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type staticFinder struct {
	name string
}

func (f staticFinder) GetTimezoneName(lng, lat float64) string {
	return f.name
}

func TestNormalizerEpochMS(t *testing.T) {
	Convey("Given a normalizer without timezone shapes", t, func() {
		n := &Normalizer{}

		Convey("When the raw stamp carries a wall-clock prefix", func() {
			ms := n.EpochMS("2024-10-01T09:00:00-04:00", 0, 0)

			Convey("Then the upstream offset is ignored and the clock reads as UTC", func() {
				want := time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)
				So(ms, ShouldEqual, want.UnixMilli())
			})
		})

		Convey("When the raw stamp is empty", func() {
			So(n.EpochMS("", 0, 0), ShouldEqual, 0)
		})

		Convey("When the raw stamp is unparseable", func() {
			So(n.EpochMS("not a date", 0, 0), ShouldEqual, 0)
		})
	})

	Convey("Given a normalizer with a fixed-offset zone finder", t, func() {
		n := &Normalizer{finder: staticFinder{name: "Etc/GMT+5"}}

		Convey("When the venue sits in that zone", func() {
			ms := n.EpochMS("2024-10-01T09:00:00-04:00", 40.0, -74.0)

			Convey("Then the wall clock reads in the venue zone", func() {
				// Etc/GMT+5 is UTC-5, so 09:00 local is 14:00 UTC.
				want := time.Date(2024, 10, 1, 14, 0, 0, 0, time.UTC)
				So(ms, ShouldEqual, want.UnixMilli())
			})
		})

		Convey("When the venue coordinates are the null island default", func() {
			ms := n.EpochMS("2024-10-01T09:00:00-04:00", 0, 0)

			Convey("Then no offset is applied", func() {
				want := time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)
				So(ms, ShouldEqual, want.UnixMilli())
			})
		})
	})
}
