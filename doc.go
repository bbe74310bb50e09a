// Package capsule is the Composition Root of the time capsule store.
//
// It connects the core logic (capsule list, unlock evaluation) with the
// storage backends using the Hexagonal Architecture pattern.
//
// A capsule is a short message bound to an unlock date. Until that calendar
// date arrives the message stays hidden; afterwards it can be read and
// deleted. The whole collection lives in a single storage slot as a JSON
// array and is rewritten on every change.
//
// Backends:
//
//   - fs (default): one JSON file per slot, replaced atomically, watchable.
//   - sqlite: a slots table in a local database file.
//   - redis: one string key per slot.
//   - memory: for tests.
//
// Usage:
//
//	svc, err := capsule.New(capsule.DefaultDir(), capsule.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	_, err = svc.Add(ctx, "Hello future", "2099-01-01")
//	for _, v := range svc.Views(time.Now()) {
//		fmt.Println(v.State, v.Message)
//	}
package capsule
