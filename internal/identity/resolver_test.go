package identity

import (
	"context"
	"testing"

	"aoe2-tracker/internal/api"
	"aoe2-tracker/internal/config"
	"aoe2-tracker/internal/insights"
	"aoe2-tracker/internal/store"

	"github.com/rs/zerolog"
	"github.com/smartystreets/goconvey/convey"
)

func TestNativeIDFromCache(t *testing.T) {
	convey.Convey("Given a resolver with a persisted mapping", t, func() {
		st := store.New(&config.Config{DataDir: t.TempDir()}, zerolog.Nop())
		convey.So(st.SaveIDMapping("5094", "199325"), convey.ShouldBeNil)

		r := NewResolver(st, api.NewRelicClient(), insights.NewClient(zerolog.Nop()), zerolog.Nop())

		convey.Convey("When resolving the cached site ID", func() {
			nativeID := r.NativeID(context.Background(), "5094")

			convey.Convey("Then the mapping answers without any network traffic", func() {
				convey.So(nativeID, convey.ShouldEqual, "199325")
			})
		})

		convey.Convey("When a site ID maps to itself", func() {
			convey.So(st.SaveIDMapping("777", "777"), convey.ShouldBeNil)

			convey.Convey("Then the identity mapping is honored", func() {
				convey.So(r.NativeID(context.Background(), "777"), convey.ShouldEqual, "777")
			})
		})
	})
}
