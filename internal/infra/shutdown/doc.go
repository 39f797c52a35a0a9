// Package shutdown coordinates graceful process termination.
//
// A Handler waits for SIGINT, SIGTERM or an explicit Trigger (for example
// when the listener fails), then runs the registered hooks in reverse
// registration order under one shared timeout:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown("storage", store.Close)
//	h.OnShutdown("http", srv.Shutdown)
//	err := h.Wait()
package shutdown
