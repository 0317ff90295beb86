package ratelimit_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	ratelimit "github.com/mvidal/destino/internal/domain/ratelimit"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryLimiter(t *testing.T) {
	Convey("Given a limiter with a controllable clock", t, func() {
		now := time.Unix(1_700_000_000, 0)
		clock := func() time.Time { return now }
		l := ratelimit.NewInMemoryLimiter(
			ratelimit.WithCooldown(30*time.Second),
			ratelimit.WithClock(clock),
		)

		Convey("When a user makes a first request", func() {
			ok, retry := l.Allow(context.Background(), "user-1")

			Convey("Then the attempt is allowed", func() {
				So(ok, ShouldBeTrue)
				So(retry, ShouldEqual, 0)
				So(l.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a user comes back within the cooldown", func() {
			l.Allow(context.Background(), "user-1")
			now = now.Add(10 * time.Second)

			ok, retry := l.Allow(context.Background(), "user-1")

			Convey("Then the attempt is rejected with the time left", func() {
				So(ok, ShouldBeFalse)
				So(retry, ShouldEqual, 20*time.Second)
			})
		})

		Convey("When the cooldown has elapsed", func() {
			l.Allow(context.Background(), "user-1")
			now = now.Add(30 * time.Second)

			ok, retry := l.Allow(context.Background(), "user-1")

			Convey("Then the attempt is allowed and the window restarts", func() {
				So(ok, ShouldBeTrue)
				So(retry, ShouldEqual, 0)

				now = now.Add(time.Second)
				ok, _ = l.Allow(context.Background(), "user-1")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When different users arrive at the same time", func() {
			ok1, _ := l.Allow(context.Background(), "user-1")
			ok2, _ := l.Allow(context.Background(), "user-2")

			Convey("Then they do not throttle each other", func() {
				So(ok1, ShouldBeTrue)
				So(ok2, ShouldBeTrue)
				So(l.Size(), ShouldEqual, 2)
			})
		})

		Convey("When a recorded attempt is forgotten", func() {
			l.Allow(context.Background(), "user-1")
			l.Forget(context.Background(), "user-1")

			Convey("Then the user may retry immediately", func() {
				ok, _ := l.Allow(context.Background(), "user-1")
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When forgetting an unknown user", func() {
			l.Forget(context.Background(), "nobody")

			Convey("Then nothing changes", func() {
				So(l.Size(), ShouldEqual, 0)
			})
		})
	})
}

func TestLimiterEviction(t *testing.T) {
	Convey("Given a bounded limiter at capacity", t, func() {
		now := time.Unix(1_700_000_000, 0)
		clock := func() time.Time { return now }
		l := ratelimit.NewInMemoryLimiter(
			ratelimit.WithCooldown(30*time.Second),
			ratelimit.WithMaxEntries(3),
			ratelimit.WithClock(clock),
		)

		l.Allow(context.Background(), "user-1")
		now = now.Add(time.Second)
		l.Allow(context.Background(), "user-2")
		now = now.Add(time.Second)
		l.Allow(context.Background(), "user-3")
		So(l.Size(), ShouldEqual, 3)

		Convey("When an expired entry exists", func() {
			now = now.Add(40 * time.Second)
			ok, _ := l.Allow(context.Background(), "user-4")

			Convey("Then expired entries are dropped to make room", func() {
				So(ok, ShouldBeTrue)
				So(l.Size(), ShouldEqual, 1)
			})
		})

		Convey("When nothing has expired", func() {
			now = now.Add(time.Second)
			ok, _ := l.Allow(context.Background(), "user-4")

			Convey("Then the entry closest to expiry is evicted", func() {
				So(ok, ShouldBeTrue)
				So(l.Size(), ShouldEqual, 3)

				// user-1 was evicted, so it is no longer throttled.
				ok1, _ := l.Allow(context.Background(), "user-1")
				So(ok1, ShouldBeTrue)
			})
		})
	})

	Convey("Given an unbounded limiter", t, func() {
		l := ratelimit.NewInMemoryLimiter(ratelimit.WithMaxEntries(0))

		Convey("When many users arrive", func() {
			for i := 0; i < 1000; i++ {
				ok, _ := l.Allow(context.Background(), fmt.Sprintf("user-%d", i))
				So(ok, ShouldBeTrue)
			}

			Convey("Then all of them are tracked", func() {
				So(l.Size(), ShouldEqual, 1000)
			})
		})
	})
}

func TestLimiterConcurrency(t *testing.T) {
	Convey("Given concurrent access from many goroutines", t, func() {
		l := ratelimit.NewInMemoryLimiter(ratelimit.WithMaxEntries(10000))
		const numGoroutines = 10
		const usersPerGoroutine = 100

		var wg sync.WaitGroup
		for i := 0; i < numGoroutines; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				for j := 0; j < usersPerGoroutine; j++ {
					l.Allow(context.Background(), fmt.Sprintf("user-%d-%d", id, j))
				}
			}(i)
		}
		wg.Wait()

		Convey("Then every distinct user is tracked exactly once", func() {
			So(l.Size(), ShouldEqual, int64(numGoroutines*usersPerGoroutine))
		})
	})
}
