// Package http exposes the connected browser contexts over a JSON API.
//
// Every route below /components/:id drives one interop proxy of the
// component attached to that session: geolocation fetches and watches,
// resize observation, console logging. Proxy errors map to status codes:
// invalid input is 400, a missing component 404, a disposed proxy 410, a
// browser-side failure 502, an unreachable browser 503 and a timeout 504.
package http
