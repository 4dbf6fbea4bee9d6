// Package delivery detects newly arrived messages by polling.
//
// A [Poller] repeatedly calls a list function and reports success as soon
// as the list grows beyond the count observed when the wait started:
//
//	p := delivery.NewPoller(list, delivery.Config{
//	    Timeout:  60 * time.Second,
//	    Interval: time.Second,
//	})
//	msg, err := p.WaitForGrowth(ctx)
//
// Detection is count based. A list that shrinks, or whose items change
// while the count stays the same, is not reported.
//
// # Error Handling
//
// Any error from the list function ends the wait immediately and is
// returned unchanged. When the deadline passes without growth, WaitForGrowth
// returns [ErrDeadline]. Cancelling the context aborts the wait at the next
// sleep and returns ctx.Err().
//
// # Thread Safety
//
// Polls within one wait are strictly sequential. Independent Pollers share
// nothing and may run concurrently.
package delivery
