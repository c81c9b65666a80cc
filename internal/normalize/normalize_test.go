package normalize

import (
	"testing"
	"time"

	"aoe2-tracker/internal/domain"

	"github.com/smartystreets/goconvey/convey"
)

func intPtr(n int) *int { return &n }

func TestCleanMapName(t *testing.T) {
	convey.Convey("Given raw map names from the listing site", t, func() {
		convey.Convey("Then .rms extensions are stripped and names title-cased", func() {
			convey.So(CleanMapName("arabia.rms"), convey.ShouldEqual, "Arabia")
			convey.So(CleanMapName("black_forest.RMS2"), convey.ShouldEqual, "Black_Forest")
			convey.So(CleanMapName("golden pit"), convey.ShouldEqual, "Golden Pit")
		})

		convey.Convey("Then free-text placeholders keep their casing", func() {
			convey.So(CleanMapName("my map"), convey.ShouldEqual, "my map")
			convey.So(CleanMapName("My Map"), convey.ShouldEqual, "My Map")
		})

		convey.Convey("Then an empty name becomes Unknown", func() {
			convey.So(CleanMapName(""), convey.ShouldEqual, "Unknown")
		})
	})
}

func TestDurationSeconds(t *testing.T) {
	convey.Convey("Given human duration strings", t, func() {
		convey.Convey("Then hour and minute forms parse to in-game seconds", func() {
			secs, ok := DurationSeconds("1h 2m 3s")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(secs, convey.ShouldEqual, 3723)

			secs, ok = DurationSeconds("17m 5s")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(secs, convey.ShouldEqual, 1025)
		})

		convey.Convey("Then unparseable values report failure", func() {
			_, ok := DurationSeconds("")
			convey.So(ok, convey.ShouldBeFalse)

			_, ok = DurationSeconds("forever")
			convey.So(ok, convey.ShouldBeFalse)

			_, ok = DurationSeconds("5m")
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("Then real-world seconds divide by the game speed", func() {
			real, ok := RealDurationSeconds("17m 0s", 1.7)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(real, convey.ShouldAlmostEqual, 600, 0.001)
		})
	})
}

func TestParseDateTime(t *testing.T) {
	convey.Convey("Given timestamps in every accepted form", t, func() {
		want := time.Date(2025, 3, 14, 15, 9, 0, 0, time.UTC)

		cases := []string{
			"2025-03-14T15:09:26",
			"2025-03-14T15:09",
			"March 14, 2025, 3:09 PM",
			"Mar. 14, 2025, 3:09 p.m.",
			"Mar 14, 2025, 3:09 PM",
			"2025-03-14 15:09",
		}

		convey.Convey("Then all parse to the same minute-truncated instant", func() {
			for _, value := range cases {
				ts, ok := ParseDateTime(value)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(ts.Equal(want), convey.ShouldBeTrue)
			}
		})

		convey.Convey("Then non-breaking spaces and dotted meridiems are tolerated", func() {
			ts, ok := ParseDateTime("Mar. 14, 2025, 3:09 p.m.")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(ts.Equal(want), convey.ShouldBeTrue)
		})

		convey.Convey("Then hour-only 12-hour forms parse on the hour", func() {
			ts, ok := ParseDateTime("Mar. 14, 2025, 3 PM")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(ts.Equal(time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)), convey.ShouldBeTrue)
		})

		convey.Convey("Then garbage reports failure", func() {
			_, ok := ParseDateTime("not a date")
			convey.So(ok, convey.ShouldBeFalse)
			_, ok = ParseDateTime("")
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestDetermineWin(t *testing.T) {
	convey.Convey("Given a player's result signals", t, func() {
		team := domain.Team{Won: false}

		convey.Convey("Then a nonzero elo change decides by sign", func() {
			convey.So(DetermineWin(team, domain.Player{EloChange: intPtr(12)}), convey.ShouldBeTrue)
			convey.So(DetermineWin(domain.Team{Won: true}, domain.Player{EloChange: intPtr(-8)}), convey.ShouldBeFalse)
		})

		convey.Convey("Then a zero elo change falls through to the outcome flag", func() {
			convey.So(DetermineWin(team, domain.Player{EloChange: intPtr(0), Outcome: intPtr(1)}), convey.ShouldBeTrue)
			convey.So(DetermineWin(team, domain.Player{EloChange: intPtr(0), Outcome: intPtr(0)}), convey.ShouldBeFalse)
		})

		convey.Convey("Then without player signals the team flag wins", func() {
			convey.So(DetermineWin(domain.Team{Won: true}, domain.Player{}), convey.ShouldBeTrue)
			convey.So(DetermineWin(domain.Team{Won: false}, domain.Player{}), convey.ShouldBeFalse)
		})
	})
}

func TestNormalizerMatch(t *testing.T) {
	convey.Convey("Given a normalizer at the standard game speed", t, func() {
		n := New(1.7)

		convey.Convey("When the raw record has no game ID", func() {
			m := n.Match(domain.RawMatch{Map: "arabia.rms"})

			convey.Convey("Then it is dropped", func() {
				convey.So(m, convey.ShouldBeNil)
			})
		})

		convey.Convey("When alternate field names are used", func() {
			m := n.Match(domain.RawMatch{
				MatchID: "12345",
				MapName: "arabia.rms",
				Date:    "2025-03-14T15:09",
				Teams: []domain.RawTeam{{
					Players: []domain.RawPlayer{{ID: "777", Name: "Villager"}},
				}},
			})

			convey.Convey("Then they map onto the canonical fields", func() {
				convey.So(m, convey.ShouldNotBeNil)
				convey.So(m.GameID, convey.ShouldEqual, "12345")
				convey.So(m.Map, convey.ShouldEqual, "Arabia")
				convey.So(m.StartTime, convey.ShouldEqual, "2025-03-14 15:09")
				convey.So(m.Teams[0].Players[0].PlayerID, convey.ShouldEqual, "777")
				convey.So(m.Teams[0].Players[0].PlayerName, convey.ShouldEqual, "Villager")
			})
		})

		convey.Convey("When only the end time is known", func() {
			m := n.Match(domain.RawMatch{
				GameID:      "9",
				Duration:    "17m 0s",
				EndDateTime: "2025-03-14 15:10",
			})

			convey.Convey("Then the start is inferred from the real-time duration", func() {
				convey.So(m.EndTime, convey.ShouldEqual, "2025-03-14 15:10")
				convey.So(m.StartTime, convey.ShouldEqual, "2025-03-14 15:00")
			})
		})

		convey.Convey("When a player's elo change contradicts the raw team flag", func() {
			m := n.Match(domain.RawMatch{
				GameID: "1",
				Teams: []domain.RawTeam{
					{Won: false, Players: []domain.RawPlayer{{PlayerID: "42", EloChange: intPtr(15)}}},
					{Won: true, Players: []domain.RawPlayer{{PlayerID: "999", EloChange: intPtr(-15)}}},
				},
			})

			convey.Convey("Then the elo sign wins and the team flags follow the players", func() {
				convey.So(m.Teams[0].Players[0].Won, convey.ShouldBeTrue)
				convey.So(m.Teams[0].Won, convey.ShouldBeTrue)
				convey.So(m.Teams[1].Players[0].Won, convey.ShouldBeFalse)
				convey.So(m.Teams[1].Won, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When players carry no result signals", func() {
			m := n.Match(domain.RawMatch{
				GameID: "2",
				Teams: []domain.RawTeam{
					{Won: true, Players: []domain.RawPlayer{{PlayerID: "42"}}},
					{Won: false, Players: []domain.RawPlayer{{PlayerID: "999"}}},
				},
			})

			convey.Convey("Then the raw team flag decides", func() {
				convey.So(m.Teams[0].Won, convey.ShouldBeTrue)
				convey.So(m.Teams[0].Players[0].Won, convey.ShouldBeTrue)
				convey.So(m.Teams[1].Won, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When neither timestamp parses", func() {
			m := n.Match(domain.RawMatch{GameID: "9", StartDateTime: "soonish"})

			convey.Convey("Then both stored timestamps are empty", func() {
				convey.So(m.StartTime, convey.ShouldEqual, "")
				convey.So(m.EndTime, convey.ShouldEqual, "")
			})
		})
	})
}
