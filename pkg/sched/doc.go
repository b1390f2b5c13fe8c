// Package sched implements a small cooperative scheduler for firmware-style
// drivers.
//
// Components register one-time init callbacks and tasks. Init callbacks run
// once, in registration order, before the first task pass. Every task runs
// to completion on each pass; tasks are expected to return quickly when they
// have nothing to do, usually by testing a [Wake] token first.
//
// A [Wake] may be marked from interrupt context. Marking it through
// [Scheduler.WakeTask] also flags the scheduler so [Scheduler.Run] starts
// another pass. Both are plain atomic stores; no channel or lock is touched
// from an interrupt, where TinyGo does not support them.
//
//	s := sched.New()
//	s.AddInit("usb", usb.Init)
//	s.AddTask("usb_errata", usb.ErrataTask)
//	s.Run(ctx)
package sched
