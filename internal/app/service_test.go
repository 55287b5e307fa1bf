package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/podium/internal/adapters/cache"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/internal/domain/model"
)

type fakeUserStore struct {
	users map[string][]model.VerifiedUser
}

func (f *fakeUserStore) UsersByGuild(ctx context.Context, guildID string) ([]model.VerifiedUser, error) {
	return f.users[guildID], nil
}

func (f *fakeUserStore) TeamsByGuild(ctx context.Context, guildID string) ([]model.GuildTeam, error) {
	return nil, nil
}

func (f *fakeUserStore) Upsert(ctx context.Context, u model.VerifiedUser) error { return nil }

func (f *fakeUserStore) Delete(ctx context.Context, guildID, userID string) error { return nil }

func (f *fakeUserStore) Close() error { return nil }

func fakeUpstream() *httptest.Server {
	mux := http.NewServeMux()
	empty := func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []any{},
			"meta": map[string]int{"total": 0, "last_page": 1},
		})
	}
	mux.HandleFunc("/seasons", empty)
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []json.RawMessage{
				json.RawMessage(`{"id":2,"name":"Later","start":"2030-06-01T09:00:00","end":"2030-06-02T17:00:00"}`),
				json.RawMessage(`{"id":1,"name":"Sooner","start":"2030-05-01T09:00:00","end":"2030-05-02T17:00:00"}`),
			},
			"meta": map[string]int{"total": 2, "last_page": 1},
		})
	})
	return httptest.NewServer(mux)
}

func testConfig(upstreamURL string) *config.Config {
	cfg := config.New()
	cfg.UpstreamBaseURL = upstreamURL
	cfg.UpstreamToken = "token"
	cfg.RetryCount = 0
	cfg.RebuildDelay = 0
	cfg.RebuildInterval = time.Hour
	return cfg
}

func TestService(t *testing.T) {
	Convey("Given a service over a fake upstream", t, func() {
		srv := fakeUpstream()
		defer srv.Close()

		users := &fakeUserStore{users: map[string][]model.VerifiedUser{
			"g1": {
				{GuildID: "g1", UserID: "u1", TeamID: 22, TeamNumber: "8838A"},
				{GuildID: "g1", UserID: "u2", TeamID: 22, TeamNumber: "8838A"},
			},
		}}
		s := service.New(testConfig(srv.URL),
			service.WithCacheStore(cache.NewMemoryStore()),
			service.WithUserStore(users))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		So(s.Start(ctx), ShouldBeNil)
		defer s.Stop()

		Convey("When upcoming events are listed for a guild", func() {
			events, err := s.GuildUpcoming(ctx, "g1")

			Convey("Then events come back soonest first", func() {
				So(err, ShouldBeNil)
				So(events, ShouldHaveLength, 2)
				So(events[0].Name, ShouldEqual, "Sooner")
				So(events[1].Name, ShouldEqual, "Later")
			})
		})

		Convey("When upcoming events are listed for an empty guild", func() {
			events, err := s.GuildUpcoming(ctx, "g2")

			Convey("Then the listing is empty without an upstream call", func() {
				So(err, ShouldBeNil)
				So(events, ShouldBeEmpty)
			})
		})

		Convey("When stats are read", func() {
			stats := s.GetStats()

			Convey("Then the wiring is reported", func() {
				So(stats["started"], ShouldBeTrue)
				So(stats["user_store"], ShouldBeTrue)
			})
		})
	})

	Convey("Given a service that was never started", t, func() {
		srv := fakeUpstream()
		defer srv.Close()

		s := service.New(testConfig(srv.URL),
			service.WithCacheStore(cache.NewMemoryStore()),
			service.WithUserStore(&fakeUserStore{}))
		ctx := context.Background()

		Convey("When guild data is requested", func() {
			_, rosterErr := s.GuildRoster(ctx, "g1")
			_, upcomingErr := s.GuildUpcoming(ctx, "g1")

			Convey("Then both operations refuse with the not-started sentinel", func() {
				So(rosterErr, ShouldEqual, service.ErrNotStarted)
				So(upcomingErr, ShouldEqual, service.ErrNotStarted)
			})
		})
	})

	Convey("Given a service without a user store", t, func() {
		srv := fakeUpstream()
		defer srv.Close()

		s := service.New(testConfig(srv.URL),
			service.WithCacheStore(cache.NewMemoryStore()))
		ctx := context.Background()
		So(s.Start(ctx), ShouldBeNil)
		defer s.Stop()

		Convey("When guild data is requested", func() {
			_, err := s.GuildRoster(ctx, "g1")

			Convey("Then the operation reports the store as disabled", func() {
				So(err, ShouldEqual, service.ErrUsersDisabled)
			})
		})
	})
}
