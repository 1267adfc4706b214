// Package app is the composition root for the lumen terminal panel.
//
// Run loads the panel config, opens the JSON log file that the diagnostics
// view later tails, restores preferences, and builds a panel.Controller around
// a device client and a fresh state.Store. One status poll runs before the
// UI so the header starts with real data. The controller's periodic tasks
// are started, ui.Run blocks until the user quits or the context ends, and
// the tasks are stopped on the way out.
//
// Startup fails only for problems the user must fix: an unreadable or invalid
// config, an unusable log path, or a malformed device address. A lamp that
// does not answer is shown as offline and polled again on schedule.
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//	if err := app.Run(ctx, app.Options{}); err != nil {
//		log.Fatal(err)
//	}
package app
