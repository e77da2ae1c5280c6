// Package shutdown runs cleanup hooks exactly once, on a termination signal
// or on normal exit, whichever comes first.
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(func(ctx context.Context) error { return svc.Close() })
//	ctx, stop := h.Notify(context.Background())
//	defer stop()
//	run(ctx)
//	err := h.Shutdown()
package shutdown
