// Package browser is the browser side of the interop bridge.
//
// A Host answers the frames a host Session sends: it resolves module
// imports to handles, dispatches invocations to the geolocation, observer
// and logger modules, and delivers their notifications back through the
// object references the host passed in. Modules only talk to the Platform
// interfaces, implemented over syscall/js by jsplatform and in memory by
// headless.
package browser
