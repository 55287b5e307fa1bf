package refresh_test

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/index"
	"github.com/okian/podium/internal/refresh"
)

type refreshSource struct {
	mu       sync.Mutex
	rebuilds int
	warmed   []string
}

func (s *refreshSource) Seasons(ctx context.Context) []model.Season {
	s.mu.Lock()
	s.rebuilds++
	s.mu.Unlock()
	return []model.Season{
		{ID: 10, Name: "Current", Program: model.Program{Code: "V5RC"}},
	}
}

func (s *refreshSource) SeasonEvents(ctx context.Context, season model.Season) []model.Event {
	return []model.Event{{ID: 1000}}
}

func (s *refreshSource) IsSeasonEventsCached(ctx context.Context, seasonID int) bool {
	return true
}

func (s *refreshSource) SeasonSkills(ctx context.Context, seasonID int, grade string) []model.SkillsRanking {
	s.mu.Lock()
	s.warmed = append(s.warmed, grade)
	s.mu.Unlock()
	return nil
}

func (s *refreshSource) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuilds, len(s.warmed)
}

func (s *refreshSource) warmedGrades() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.warmed...)
}

func TestWorker(t *testing.T) {
	Convey("Given a refresh worker over a fake source", t, func() {
		src := &refreshSource{}
		idx := index.New(src, index.WithFetchDelay(0))
		w := refresh.NewWorker(idx,
			refresh.WithInterval(time.Hour),
			refresh.WithWarmer(src))

		Convey("When the worker starts", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			w.Start(ctx)

			So(func() bool {
				deadline := time.Now().Add(2 * time.Second)
				for time.Now().Before(deadline) {
					if _, warmed := src.counts(); warmed >= 4 {
						return true
					}
					time.Sleep(10 * time.Millisecond)
				}
				return false
			}(), ShouldBeTrue)

			Convey("Then the first cycle ran without waiting an interval", func() {
				rebuilds, _ := src.counts()
				So(rebuilds, ShouldEqual, 1)

				season, ok := idx.Resolve(1000, "V5RC")
				So(ok, ShouldBeTrue)
				So(season.ID, ShouldEqual, 10)
			})

			Convey("Then every grade level is warmed, elementary included", func() {
				grades := src.warmedGrades()
				So(grades, ShouldHaveLength, 4)
				So(grades, ShouldContain, "High School")
				So(grades, ShouldContain, "Middle School")
				So(grades, ShouldContain, "Elementary School")
				So(grades, ShouldContain, "College")
			})

			Convey("Then Stop halts the loop", func() {
				w.Stop()
				rebuilds, _ := src.counts()
				So(rebuilds, ShouldEqual, 1)
			})
		})
	})
}
