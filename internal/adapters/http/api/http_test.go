package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/podium/internal/adapters/http/api"
	"github.com/okian/podium/internal/domain/chunk"
	"github.com/okian/podium/internal/domain/model"
)

// mockDeps serves canned competition data.
type mockDeps struct {
	teams    map[string]model.Team
	awards   map[int][]model.Award
	skills   map[int][]model.Skill
	rosters  map[string][]model.GuildTeam
	upcoming map[string][]model.Event
	seasons  []model.Season
	owners   map[int]model.Season
}

func (m *mockDeps) TeamByNumber(ctx context.Context, number string) (model.Team, bool) {
	t, ok := m.teams[number]
	return t, ok
}

func (m *mockDeps) TeamAwards(ctx context.Context, teamID int) []model.Award {
	return m.awards[teamID]
}

func (m *mockDeps) TeamSkills(ctx context.Context, teamID int) []model.Skill {
	return m.skills[teamID]
}

func (m *mockDeps) EventTeams(ctx context.Context, eventID int) []model.Team {
	if eventID == 500 {
		return []model.Team{m.teams["8838A"]}
	}
	return nil
}

func (m *mockDeps) SeasonList() []model.Season {
	return m.seasons
}

func (m *mockDeps) ResolveSeason(eventID int, programCode string) (model.Season, bool) {
	s, ok := m.owners[eventID]
	return s, ok
}

func (m *mockDeps) GuildRoster(ctx context.Context, guildID string) ([]model.GuildTeam, error) {
	return m.rosters[guildID], nil
}

func (m *mockDeps) GuildUpcoming(ctx context.Context, guildID string) ([]model.Event, error) {
	return m.upcoming[guildID], nil
}

type mockStats struct{}

func (mockStats) GetStats() map[string]any {
	return map[string]any{"status": "ok"}
}

func newTestServer(deps api.Dependencies, opts ...api.ServerOption) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}, opts...).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	So(err, ShouldBeNil)
	defer resp.Body.Close()
	if out != nil {
		So(json.NewDecoder(resp.Body).Decode(out), ShouldBeNil)
	}
	return resp
}

func fixtureDeps() *mockDeps {
	currentSeason := model.Season{ID: 190, Name: "High Stakes", Program: model.Program{Code: "V5RC"}}
	return &mockDeps{
		teams: map[string]model.Team{
			"8838A": {ID: 22, Number: "8838A", Name: "Seniors", Grade: "High School",
				Program: model.Program{ID: 1, Code: "V5RC"}},
		},
		awards: map[int][]model.Award{
			22: {
				{ID: 1, Name: "Judges", Event: model.EventRef{ID: 500, Name: "Regionals"}},
				{ID: 2, Name: "Tournament Champions", Event: model.EventRef{ID: 500, Name: "Regionals"}},
				{ID: 3, Name: "Tournament Champions", Event: model.EventRef{ID: 600, Name: "States"}},
			},
		},
		skills: map[int][]model.Skill{
			22: {
				{ID: 1, Type: "driver", Score: 80, Rank: 4, Attempts: 3,
					Season: model.SeasonRef{ID: 190, Name: "High Stakes"}},
				{ID: 2, Type: "programming", Score: 55, Rank: 4, Attempts: 2,
					Season: model.SeasonRef{ID: 190, Name: "High Stakes"}},
				{ID: 3, Type: "driver", Score: 0, Rank: 0, Attempts: 1,
					Season: model.SeasonRef{ID: 181, Name: "Over Under"}},
			},
		},
		rosters: map[string][]model.GuildTeam{
			"g1": {{TeamID: 22, TeamNumber: "8838A",
				Users: []model.VerifiedUser{{GuildID: "g1", UserID: "u1", TeamID: 22, TeamNumber: "8838A"}}}},
		},
		upcoming: map[string][]model.Event{
			"g1": {{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}},
		},
		seasons: []model.Season{currentSeason},
		owners:  map[int]model.Season{500: currentSeason},
	}
}

func TestAPI(t *testing.T) {
	Convey("Given the API over canned data", t, func() {
		srv := newTestServer(fixtureDeps())
		defer srv.Close()

		Convey("When a known team is fetched", func() {
			var team model.Team
			resp := getJSON(t, srv.URL+"/teams/8838A", &team)

			Convey("Then the team comes back with a request id", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(team.ID, ShouldEqual, 22)
				So(resp.Header.Get("X-Request-ID"), ShouldNotBeEmpty)
			})
		})

		Convey("When an unknown team is fetched", func() {
			resp := getJSON(t, srv.URL+"/teams/NOPE1", nil)

			Convey("Then the lookup is a 404", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When a team's awards are fetched", func() {
			var groups []struct {
				Name   string   `json:"name"`
				Count  int      `json:"count"`
				Events []string `json:"events"`
			}
			resp := getJSON(t, srv.URL+"/teams/8838A/awards", &groups)

			Convey("Then groups are prestige-sorted and season-annotated", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(groups, ShouldHaveLength, 2)
				So(groups[0].Name, ShouldEqual, "Tournament Champions")
				So(groups[0].Count, ShouldEqual, 2)
				So(groups[0].Events[0], ShouldEqual, "Regionals [High Stakes]")
				So(groups[0].Events[1], ShouldEqual, "States")
			})
		})

		Convey("When awards are requested in chunk format", func() {
			var docs []chunk.Document
			resp := getJSON(t, srv.URL+"/teams/8838A/awards?format=chunks", &docs)

			Convey("Then at least one bounded document comes back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(len(docs), ShouldBeGreaterThanOrEqualTo, 1)
				So(docs[0].Title, ShouldEqual, "8838A Awards")
				So(docs[0].Size(), ShouldBeLessThanOrEqualTo, chunk.DocumentBudget)
			})
		})

		Convey("When a team's skills summary is fetched", func() {
			var summary []struct {
				Season      model.SeasonRef `json:"season"`
				Driver      int             `json:"driver"`
				Programming int             `json:"programming"`
				Combined    int             `json:"combined"`
			}
			resp := getJSON(t, srv.URL+"/teams/8838A/skills", &summary)

			Convey("Then unranked runs are excluded", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(summary, ShouldHaveLength, 1)
				So(summary[0].Season.ID, ShouldEqual, 190)
				So(summary[0].Driver, ShouldEqual, 80)
				So(summary[0].Programming, ShouldEqual, 55)
				So(summary[0].Combined, ShouldEqual, 135)
			})
		})

		Convey("When an event's teams are fetched", func() {
			var teams []model.Team
			resp := getJSON(t, srv.URL+"/events/500/teams", &teams)

			Convey("Then the roster comes back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(teams, ShouldHaveLength, 1)
			})
		})

		Convey("When a season is resolved from an event", func() {
			var season model.Season
			resp := getJSON(t, srv.URL+"/seasons/resolve?event=500&program=V5RC", &season)

			Convey("Then the owning season comes back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(season.ID, ShouldEqual, 190)
			})
		})

		Convey("When an unowned event is resolved", func() {
			resp := getJSON(t, srv.URL+"/seasons/resolve?event=777", nil)

			Convey("Then the resolution is a 404", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When a guild roster is fetched", func() {
			var roster []model.GuildTeam
			resp := getJSON(t, srv.URL+"/guilds/g1/roster", &roster)

			Convey("Then verified users come grouped by team", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(roster, ShouldHaveLength, 1)
				So(roster[0].Users, ShouldHaveLength, 1)
			})
		})

		Convey("When stats are fetched", func() {
			var stats map[string]any
			resp := getJSON(t, srv.URL+"/stats", &stats)

			Convey("Then the provider's view comes back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(stats["status"], ShouldEqual, "ok")
			})
		})
	})

	Convey("Given a guild with more upcoming events than the cap", t, func() {
		srv := newTestServer(fixtureDeps(), api.WithUpcomingLimit(2))
		defer srv.Close()

		Convey("When the upcoming list is fetched", func() {
			var resp struct {
				Events []model.Event `json:"events"`
				More   int           `json:"more"`
			}
			res := getJSON(t, srv.URL+"/guilds/g1/upcoming", &resp)

			Convey("Then the list is capped and the cut count reported", func() {
				So(res.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Events, ShouldHaveLength, 2)
				So(resp.More, ShouldEqual, 2)
			})
		})
	})
}
