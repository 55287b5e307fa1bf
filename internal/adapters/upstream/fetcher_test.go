package upstream_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/podium/internal/adapters/upstream"
)

// flakyTransport fails the first failures round trips, then delegates.
type flakyTransport struct {
	failures int32
	calls    int32
	next     http.RoundTripper
}

func (t *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	n := atomic.AddInt32(&t.calls, 1)
	if n <= atomic.LoadInt32(&t.failures) {
		return nil, errors.New("connection reset")
	}
	return t.next.RoundTrip(req)
}

func TestFetcher(t *testing.T) {
	Convey("Given an upstream endpoint", t, func() {
		var gotAuth, gotAccept string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotAccept = r.Header.Get("Accept")
			w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		Convey("When a fetch succeeds on the first attempt", func() {
			f := upstream.NewFetcher("secret")
			resp, ok := f.Get(context.Background(), srv.URL)

			Convey("Then the body and status come back", func() {
				So(ok, ShouldBeTrue)
				So(resp.OK(), ShouldBeTrue)
				So(string(resp.Body), ShouldEqual, `{"ok":true}`)
			})

			Convey("Then the request carried the bearer token", func() {
				So(gotAuth, ShouldEqual, "Bearer secret")
				So(gotAccept, ShouldEqual, "application/json")
			})
		})

		Convey("When transport failures precede a success", func() {
			tr := &flakyTransport{failures: 2, next: http.DefaultTransport}
			f := upstream.NewFetcher("secret",
				upstream.WithRetryCount(4),
				upstream.WithHTTPClient(&http.Client{Transport: tr}))
			resp, ok := f.Get(context.Background(), srv.URL)

			Convey("Then the fetch still resolves", func() {
				So(ok, ShouldBeTrue)
				So(resp.Status, ShouldEqual, http.StatusOK)
				So(atomic.LoadInt32(&tr.calls), ShouldEqual, 3)
			})
		})

		Convey("When every attempt fails at the transport", func() {
			tr := &flakyTransport{failures: 100, next: http.DefaultTransport}
			f := upstream.NewFetcher("secret",
				upstream.WithRetryCount(2),
				upstream.WithHTTPClient(&http.Client{Transport: tr}))
			resp, ok := f.Get(context.Background(), srv.URL)

			Convey("Then the result is absent after retries plus one attempts", func() {
				So(ok, ShouldBeFalse)
				So(resp, ShouldBeNil)
				So(atomic.LoadInt32(&tr.calls), ShouldEqual, 3)
			})
		})
	})

	Convey("Given an endpoint answering an HTTP error status", t, func() {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		Convey("When the endpoint is fetched", func() {
			f := upstream.NewFetcher("secret", upstream.WithRetryCount(3))
			resp, ok := f.Get(context.Background(), srv.URL)

			Convey("Then the status passes through without a retry", func() {
				So(ok, ShouldBeTrue)
				So(resp.OK(), ShouldBeFalse)
				So(resp.Status, ShouldEqual, http.StatusNotFound)
				So(atomic.LoadInt32(&calls), ShouldEqual, 1)
			})
		})
	})
}
