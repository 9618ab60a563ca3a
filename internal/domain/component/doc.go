// Package component tracks the browser contexts connected to the host.
//
// Each connected session gets a Component holding the Geolocation,
// Observer and JsLogger proxies bound to it. Watch and resize
// notifications are kept in a bounded event log that HTTP clients page
// through by sequence number. Detaching a component disposes its proxies;
// disposal failures are logged and never returned.
package component
