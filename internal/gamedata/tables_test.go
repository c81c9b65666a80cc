package gamedata

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestTables(t *testing.T) {
	convey.Convey("Given the static lookup tables", t, func() {
		tables := NewTables()

		convey.Convey("Then civilization IDs resolve in roster order", func() {
			convey.So(tables.CivName(0), convey.ShouldEqual, "Armenians")
			convey.So(tables.CivName(26), convey.ShouldEqual, "Lithuanians")
			convey.So(tables.CivName(41), convey.ShouldEqual, "Teutons")
			convey.So(tables.CivName(44), convey.ShouldEqual, "Vikings")
		})

		convey.Convey("Then unknown civilization IDs fall back to a numbered label", func() {
			convey.So(tables.CivName(99), convey.ShouldEqual, "Civ 99")
		})

		convey.Convey("Then the ranked ladder match types all read RM 1v1", func() {
			for _, id := range []int{1, 2, 6, 66, 86} {
				convey.So(tables.ModeLabel(id), convey.ShouldEqual, "RM 1v1")
			}
		})

		convey.Convey("Then unknown match types fall back to a numbered label", func() {
			convey.So(tables.ModeLabel(500), convey.ShouldEqual, "Mode 500")
		})
	})
}
