// Package geolocation drives the browser Geolocation API from the host.
//
// Interop lazily imports the browser geolocation module, fetches one-shot
// positions and manages keyed position watches. Watch updates arrive through
// the NotifyGeolocationWatch callback and are fanned out to the handlers
// registered with OnWatch and OnWatchContext.
//
// The types in this package are also the wire contract the browser runtime
// decodes and encodes.
package geolocation
