// Package interop holds the host-side building blocks shared by the browser
// API proxies: the Runtime abstraction over a connected browser context,
// lazily imported modules, object references the browser calls back
// through, naming conventions and wire enum tables.
//
// A proxy follows the same pattern for every browser API:
//
//	mod := interop.NewLazyModule(rt, "./_content/webinterop/geolocation.js")
//	ref := interop.NewObjectRef(rt, "geolocation")
//	ref.Handle("NotifyGeolocationWatch", onWatch)
//
//	m, err := mod.Get(ctx) // first caller imports, the rest share the load
//	err = m.Invoke(ctx, interop.MethodName(interop.NamespaceGeolocation, "WatchPosition"), &id, ref, key, opts)
//
// Disposal releases the module handle and the object reference; failures
// during teardown are swallowed by the proxies.
package interop
