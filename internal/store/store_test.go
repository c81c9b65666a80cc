package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"aoe2-tracker/internal/config"
	"aoe2-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/smartystreets/goconvey/convey"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(&config.Config{DataDir: t.TempDir()}, zerolog.Nop())
}

func TestMatchCache(t *testing.T) {
	convey.Convey("Given a store over a fresh data dir", t, func() {
		s := newTestStore(t)

		convey.Convey("When no cache exists yet", func() {
			convey.Convey("Then loading yields an empty list", func() {
				convey.So(s.LoadMatches("123"), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When saving matches with duplicate game IDs", func() {
			err := s.SaveMatches("123", []domain.Match{
				{GameID: "g1", Map: "Arabia", StartTime: "2025-03-14 10:00"},
				{GameID: "g2", Map: "Arena", StartTime: "2025-03-14 09:00"},
				{GameID: "g1", Map: "Arabia", StartTime: "2025-03-14 10:00", Mode: "RM 1v1"},
			})
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the later copy wins and order is chronological", func() {
				got := s.LoadMatches("123")
				convey.So(got, convey.ShouldHaveLength, 2)
				convey.So(got[0].GameID, convey.ShouldEqual, "g2")
				convey.So(got[1].GameID, convey.ShouldEqual, "g1")
				convey.So(got[1].Mode, convey.ShouldEqual, "RM 1v1")
			})

			convey.Convey("Then KnownIDs reflects the cached set", func() {
				known := s.KnownIDs("123")
				convey.So(known, convey.ShouldHaveLength, 2)
				convey.So(known["g1"], convey.ShouldBeTrue)
				convey.So(known["g2"], convey.ShouldBeTrue)
				convey.So(known["g3"], convey.ShouldBeFalse)
			})
		})

		convey.Convey("When matches lack a start time", func() {
			err := s.SaveMatches("123", []domain.Match{
				{GameID: "late", StartTime: "2025-03-14 10:00"},
				{GameID: "end-only", EndTime: "2025-03-14 09:30"},
				{GameID: "dateless"},
			})
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then end time orders them and dateless entries sort first", func() {
				got := s.LoadMatches("123")
				convey.So(got, convey.ShouldHaveLength, 3)
				convey.So(got[0].GameID, convey.ShouldEqual, "dateless")
				convey.So(got[1].GameID, convey.ShouldEqual, "end-only")
				convey.So(got[2].GameID, convey.ShouldEqual, "late")
			})
		})

		convey.Convey("When entries without a game ID sneak in", func() {
			err := s.SaveMatches("123", []domain.Match{
				{GameID: "g1"},
				{Map: "Arabia"},
			})
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then they never reach disk", func() {
				convey.So(s.LoadMatches("123"), convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("When the cache file is corrupt", func() {
			convey.So(os.WriteFile(s.MatchesPath("123"), []byte("{not json"), 0o644), convey.ShouldBeNil)

			convey.Convey("Then loading recovers with an empty list", func() {
				convey.So(s.LoadMatches("123"), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When saving the same list twice", func() {
			matches := []domain.Match{{GameID: "g1", StartTime: "2025-03-14 10:00"}}
			convey.So(s.SaveMatches("123", matches), convey.ShouldBeNil)
			first, err := os.ReadFile(s.MatchesPath("123"))
			convey.So(err, convey.ShouldBeNil)
			convey.So(s.SaveMatches("123", s.LoadMatches("123")), convey.ShouldBeNil)
			second, err := os.ReadFile(s.MatchesPath("123"))
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the file content is identical", func() {
				convey.So(string(second), convey.ShouldEqual, string(first))
			})
		})

		convey.Convey("When a save completes", func() {
			convey.So(s.SaveMatches("123", []domain.Match{{GameID: "g1"}}), convey.ShouldBeNil)

			convey.Convey("Then no temp files are left behind", func() {
				entries, err := os.ReadDir(filepath.Dir(s.MatchesPath("123")))
				convey.So(err, convey.ShouldBeNil)
				for _, entry := range entries {
					convey.So(entry.Name(), convey.ShouldNotContainSubstring, ".tmp-")
				}
			})
		})
	})
}

func TestMergeMatches(t *testing.T) {
	convey.Convey("Given a cached list and a fresh fetch", t, func() {
		cached := []domain.Match{{GameID: "g1", Map: "Old"}}
		fetched := []domain.Match{{GameID: "g1", Map: "New"}, {GameID: "g2"}}

		convey.Convey("When merged and saved", func() {
			s := newTestStore(t)
			convey.So(s.SaveMatches("9", MergeMatches(cached, fetched)), convey.ShouldBeNil)

			convey.Convey("Then the fetched copy overrides the cached one", func() {
				got := s.LoadMatches("9")
				convey.So(got, convey.ShouldHaveLength, 2)
				for _, m := range got {
					if m.GameID == "g1" {
						convey.So(m.Map, convey.ShouldEqual, "New")
					}
				}
			})
		})
	})
}

func TestSyncStatus(t *testing.T) {
	convey.Convey("Given a store over a fresh data dir", t, func() {
		s := newTestStore(t)

		convey.Convey("When no status has been persisted", func() {
			_, ok := s.LoadStatus("123")
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("When a status round-trips", func() {
			in := domain.SyncStatus{IsComplete: true, LastPageFetched: 7, LastRefresh: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)}
			convey.So(s.SaveStatus("123", in), convey.ShouldBeNil)

			out, ok := s.LoadStatus("123")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(out, convey.ShouldResemble, in)
		})

		convey.Convey("When the status file is corrupt", func() {
			convey.So(s.SaveStatus("123", domain.SyncStatus{IsComplete: true}), convey.ShouldBeNil)
			convey.So(os.WriteFile(s.StatusPath("123"), []byte("[["), 0o644), convey.ShouldBeNil)

			_, ok := s.LoadStatus("123")
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestIDMappings(t *testing.T) {
	convey.Convey("Given a store over a fresh data dir", t, func() {
		s := newTestStore(t)

		convey.Convey("When nothing has been recorded", func() {
			convey.So(s.LoadIDMappings(), convey.ShouldBeEmpty)
		})

		convey.Convey("When mappings accumulate across saves", func() {
			convey.So(s.SaveIDMapping("111", "222"), convey.ShouldBeNil)
			convey.So(s.SaveIDMapping("333", "444"), convey.ShouldBeNil)

			got := s.LoadIDMappings()
			convey.So(got, convey.ShouldResemble, map[string]string{"111": "222", "333": "444"})
		})
	})
}

func TestSyncLock(t *testing.T) {
	convey.Convey("Given a store over a fresh data dir", t, func() {
		s := newTestStore(t)

		convey.Convey("When the lock is free", func() {
			lock, acquired, err := s.AcquireSyncLock("123")
			convey.So(err, convey.ShouldBeNil)
			convey.So(acquired, convey.ShouldBeTrue)
			defer lock.Unlock()

			convey.Convey("Then a second attempt for the same player is refused", func() {
				_, acquired, err := s.AcquireSyncLock("123")
				convey.So(err, convey.ShouldBeNil)
				convey.So(acquired, convey.ShouldBeFalse)
			})

			convey.Convey("Then locks for other players are independent", func() {
				other, acquired, err := s.AcquireSyncLock("456")
				convey.So(err, convey.ShouldBeNil)
				convey.So(acquired, convey.ShouldBeTrue)
				convey.So(other.Unlock(), convey.ShouldBeNil)
			})
		})
	})
}
