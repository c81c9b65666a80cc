package api

import (
	"testing"
	"time"

	"aoe2-tracker/internal/gamedata"
	"aoe2-tracker/internal/normalize"

	"github.com/smartystreets/goconvey/convey"
)

func intPtr(n int) *int { return &n }

func TestProfileNames(t *testing.T) {
	convey.Convey("Given a response side-table", t, func() {
		resp := &MatchHistoryResponse{Profiles: []Profile{
			{ProfileID: 100, Alias: "TheViper", Name: "/steam/1"},
			{ProfileID: 200, Name: "/steam/2"},
			{ProfileID: 300},
		}}

		convey.Convey("Then aliases win, names back them up, Unknown closes the gap", func() {
			names := resp.ProfileNames()
			convey.So(names["100"], convey.ShouldEqual, "TheViper")
			convey.So(names["200"], convey.ShouldEqual, "/steam/2")
			convey.So(names["300"], convey.ShouldEqual, "Unknown")
		})
	})
}

func TestParseMatch(t *testing.T) {
	convey.Convey("Given a raw match record from the native API", t, func() {
		tables := gamedata.NewTables()
		started := int64(1742044800)
		raw := MatchHistoryStat{
			ID:             987654,
			MatchTypeID:    6,
			MapName:        "arabia.rms",
			StartGameTime:  started,
			CompletionTime: started + 3723,
			Members: []MatchHistoryMember{
				{ProfileID: 200, TeamID: 1, CivilizationID: intPtr(1), OldRating: intPtr(1200), NewRating: intPtr(1188)},
				{ProfileID: 100, TeamID: 0, CivilizationID: intPtr(2), OldRating: intPtr(1100), NewRating: intPtr(1112)},
			},
		}
		names := map[string]string{"100": "Me", "200": "Rival"}

		convey.Convey("When parsed", func() {
			m := ParseMatch(raw, names, tables)

			convey.Convey("Then identity fields map onto the canonical model", func() {
				convey.So(m.GameID, convey.ShouldEqual, "987654")
				convey.So(m.Mode, convey.ShouldEqual, "RM 1v1")
				convey.So(m.Map, convey.ShouldEqual, "Arabia")
				convey.So(m.Duration, convey.ShouldEqual, "1h 2m 3s")
			})

			convey.Convey("Then timestamps match the stored minute-precision form", func() {
				convey.So(m.StartTime, convey.ShouldEqual, normalize.FormatDateTime(time.Unix(started, 0)))
				convey.So(m.EndTime, convey.ShouldEqual, normalize.FormatDateTime(time.Unix(started+3723, 0)))
			})

			convey.Convey("Then teams come out in team-ID order with resolved results", func() {
				convey.So(m.Teams, convey.ShouldHaveLength, 2)
				convey.So(m.Teams[0].Players[0].PlayerID, convey.ShouldEqual, "100")
				convey.So(m.Teams[0].Won, convey.ShouldBeTrue)
				convey.So(m.Teams[1].Players[0].PlayerID, convey.ShouldEqual, "200")
				convey.So(m.Teams[1].Won, convey.ShouldBeFalse)
			})

			convey.Convey("Then elo deltas are derived from the rating pair", func() {
				convey.So(*m.Teams[0].Players[0].EloChange, convey.ShouldEqual, 12)
				convey.So(*m.Teams[1].Players[0].EloChange, convey.ShouldEqual, -12)
				convey.So(*m.Teams[0].Players[0].Elo, convey.ShouldEqual, 1100)
			})

			convey.Convey("Then civ IDs resolve to display names", func() {
				convey.So(m.Teams[0].Players[0].Civ, convey.ShouldNotBeEmpty)
				convey.So(m.Teams[0].Players[0].Civ, convey.ShouldNotEqual, m.Teams[1].Players[0].Civ)
			})
		})

		convey.Convey("When a member is missing from the side-table", func() {
			m := ParseMatch(raw, map[string]string{}, tables)

			convey.Convey("Then the player gets the Unknown placeholder", func() {
				convey.So(m.Teams[0].Players[0].PlayerName, convey.ShouldEqual, "Unknown")
			})
		})

		convey.Convey("When ratings are absent but the outcome flag is set", func() {
			raw := MatchHistoryStat{
				ID:          1,
				MatchTypeID: 6,
				MapName:     "arena",
				Members: []MatchHistoryMember{
					{ProfileID: 100, TeamID: 0, Outcome: intPtr(1)},
					{ProfileID: 200, TeamID: 1, Outcome: intPtr(0)},
				},
			}
			m := ParseMatch(raw, names, tables)

			convey.Convey("Then the outcome flag decides the result", func() {
				convey.So(m.Teams[0].Won, convey.ShouldBeTrue)
				convey.So(m.Teams[1].Won, convey.ShouldBeFalse)
			})

			convey.Convey("Then no timestamps or duration are fabricated", func() {
				convey.So(m.StartTime, convey.ShouldEqual, "")
				convey.So(m.EndTime, convey.ShouldEqual, "")
				convey.So(m.Duration, convey.ShouldEqual, "")
			})
		})
	})
}
