//go:build js
// +build js

package audio

import (
	"context"
	"fmt"

	"github.com/gopherjs/gopherjs/js"
)

// Fetcher loads assets with window.fetch.
type Fetcher struct{}

func (Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := await(ctx, js.Global.Call("fetch", url))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if !resp.Get("ok").Bool() {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.Get("status").Int())
	}
	buf, err := await(ctx, resp.Call("arrayBuffer"))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return js.Global.Get("Uint8Array").New(buf).Interface().([]byte), nil
}
