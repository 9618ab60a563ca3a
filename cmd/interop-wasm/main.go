//go:build js && wasm

// Command interop-wasm is the browser half of the bridge. Built with
// GOOS=js GOARCH=wasm and loaded next to wasm_exec.js, it connects back to
// the server that served the page and answers its interop calls.
//
// The page may set window.webinteropConfig = {url, codec} before loading.
package main

import (
	"context"
	"net/url"
	"syscall/js"
	"time"

	"github.com/GriffinCanCode/webinterop/internal/browser"
	"github.com/GriffinCanCode/webinterop/internal/browser/jsplatform"
	"github.com/GriffinCanCode/webinterop/internal/wire"
)

const (
	defaultPath  = "/interop"
	dialTimeout  = 10 * time.Second
	retryBackoff = 2 * time.Second
	maxBackoff   = 30 * time.Second
)

func main() {
	platform := jsplatform.New()
	target, codec := settings()

	backoff := retryBackoff
	for {
		if err := serve(target, codec, platform); err != nil {
			platform.Console.Warn("webinterop: " + err.Error())
		}
		time.Sleep(backoff)
		backoff = min(backoff*2, maxBackoff)
	}
}

func serve(target string, codec wire.Codec, platform browser.Platform) error {
	dialCtx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	conn, err := jsplatform.Dial(dialCtx, target, codec.Binary())
	cancel()
	if err != nil {
		return err
	}

	host := browser.NewHost(conn, codec, platform, browser.Options{})
	defer host.Close()
	return host.Run(context.Background())
}

// settings reads the endpoint from window.webinteropConfig, defaulting to
// the interop path of the origin that served the page.
func settings() (string, wire.Codec) {
	codec := wire.JSON
	location := js.Global().Get("location")
	u := url.URL{Scheme: "ws", Host: location.Get("host").String(), Path: defaultPath}
	if location.Get("protocol").String() == "https:" {
		u.Scheme = "wss"
	}

	cfg := js.Global().Get("webinteropConfig")
	if cfg.Truthy() {
		if v := cfg.Get("codec"); v.Type() == js.TypeString {
			if c, err := wire.CodecByName(v.String()); err == nil {
				codec = c
			}
		}
		if v := cfg.Get("url"); v.Type() == js.TypeString {
			return v.String(), codec
		}
	}

	q := u.Query()
	q.Set("codec", codec.Name())
	u.RawQuery = q.Encode()
	return u.String(), codec
}
