// Package headless is an in-memory browser.Platform.
//
// Everything a real page would do on its own is driven explicitly:
// positions are set with Geolocation.SetPosition, resize batches are
// delivered with ResizeObservers.Resize and Batch, and console output is
// captured for inspection. Documents can be built element by element or
// loaded from HTML. Updates are delivered synchronously on the goroutine
// that triggers them; watches and observers get no initial notification.
package headless
