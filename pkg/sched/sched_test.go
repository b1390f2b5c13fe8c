package sched

import (
	"context"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Wake", func() {
	var w Wake

	BeforeEach(func() {
		w = Wake{}
	})

	It("should start unwoken", func() {
		Expect(w.Pending()).To(BeFalse())
		Expect(w.Check()).To(BeFalse())
	})

	It("should clear on check", func() {
		w.Set()
		Expect(w.Pending()).To(BeTrue())
		Expect(w.Check()).To(BeTrue())
		Expect(w.Check()).To(BeFalse())
	})

	It("should collapse repeated sets", func() {
		w.Set()
		w.Set()
		Expect(w.Check()).To(BeTrue())
		Expect(w.Check()).To(BeFalse())
	})
})

var _ = Describe("Scheduler", func() {
	var (
		s     *Scheduler
		calls []string
	)

	BeforeEach(func() {
		s = New()
		calls = nil
	})

	It("should run inits once before tasks", func() {
		s.AddInit("a", func() { calls = append(calls, "init-a") })
		s.AddInit("b", func() { calls = append(calls, "init-b") })
		s.AddTask("t", func() { calls = append(calls, "task") })

		s.RunOnce()
		s.RunOnce()

		Expect(calls).To(Equal([]string{"init-a", "init-b", "task", "task"}))
	})

	It("should run init only once when called directly", func() {
		n := 0
		s.AddInit("count", func() { n++ })

		s.Init()
		s.Init()
		s.RunOnce()

		Expect(n).To(Equal(1))
	})

	It("should list task names in registration order", func() {
		s.AddTask("usb_errata", func() {})
		s.AddTask("serial", func() {})

		Expect(s.Tasks()).To(Equal([]string{"usb_errata", "serial"}))
	})

	It("should mark the token on WakeTask", func() {
		var w Wake
		s.WakeTask(&w)
		s.WakeTask(&w)

		Expect(w.Check()).To(BeTrue())
	})

	It("should run another pass when a task is woken", func() {
		var (
			w      Wake
			passes atomic.Int32
			seen   atomic.Int32
		)
		s.AddTask("waker", func() {
			passes.Add(1)
			if w.Check() {
				seen.Add(1)
			}
		})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- s.Run(ctx) }()

		Eventually(passes.Load).Should(BeNumerically(">=", 1))
		s.WakeTask(&w)
		Eventually(seen.Load, time.Second).Should(Equal(int32(1)))

		cancel()
		Eventually(done).Should(Receive(MatchError(context.Canceled)))
	})

	It("should stay idle until a task is woken", func() {
		var (
			w      Wake
			passes atomic.Int32
			idles  atomic.Int32
		)
		s.AddTask("count", func() { passes.Add(1) })
		s.SetIdle(func() {
			idles.Add(1)
			time.Sleep(time.Millisecond)
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		done := make(chan error, 1)
		go func() { done <- s.Run(ctx) }()

		Eventually(idles.Load).Should(BeNumerically(">", 2))
		Consistently(passes.Load, 50*time.Millisecond).Should(Equal(int32(1)))

		s.WakeTask(&w)
		Eventually(passes.Load).Should(Equal(int32(2)))
		Consistently(passes.Load, 50*time.Millisecond).Should(Equal(int32(2)))

		cancel()
		Eventually(done).Should(Receive(MatchError(context.Canceled)))
	})

	It("should not block WakeTask without a running loop", func() {
		var w Wake
		for range 100 {
			s.WakeTask(&w)
		}
		Expect(w.Check()).To(BeTrue())
	})

	It("should run a pass for a wake raised during a pass", func() {
		var (
			w      Wake
			passes atomic.Int32
		)
		s.AddTask("rewake", func() {
			if passes.Add(1) < 3 {
				s.WakeTask(&w)
			}
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = s.Run(ctx) }()

		Eventually(passes.Load).Should(Equal(int32(3)))
		Consistently(passes.Load, 50*time.Millisecond).Should(Equal(int32(3)))
	})
})
