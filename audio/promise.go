//go:build js
// +build js

package audio

import (
	"context"
	"fmt"

	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/lofi-fm/radio"
)

// DOMError is a rejected promise or thrown exception from the browser.
type DOMError struct {
	Name    string
	Message string
}

func (e *DOMError) Error() string {
	if e.Message == "" {
		return e.Name
	}
	return e.Name + ": " + e.Message
}

// Is makes NotAllowedError match radio.ErrAutoplayBlocked.
func (e *DOMError) Is(target error) bool {
	return target == radio.ErrAutoplayBlocked && e.Name == "NotAllowedError"
}

func domError(v *js.Object) error {
	if v == nil || v == js.Undefined || v == js.Null {
		return &DOMError{Name: "Error"}
	}
	name := v.Get("name")
	if name == js.Undefined {
		return &DOMError{Name: "Error", Message: v.String()}
	}
	e := &DOMError{Name: name.String()}
	if msg := v.Get("message"); msg != js.Undefined {
		e.Message = msg.String()
	}
	return e
}

// await blocks the calling goroutine until p settles or ctx is done. A nil
// or undefined p (old browsers return nothing from play()) resolves
// immediately.
func await(ctx context.Context, p *js.Object) (*js.Object, error) {
	if p == nil || p == js.Undefined || p.Get("then") == js.Undefined {
		return p, nil
	}

	type result struct {
		v   *js.Object
		err error
	}
	ch := make(chan result, 1)
	p.Call("then",
		func(v *js.Object) { ch <- result{v: v} },
		func(e *js.Object) { ch <- result{err: domError(e)} },
	)

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// try runs fn and turns a thrown JS exception into an error.
func try(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if jsErr, ok := r.(*js.Error); ok {
				err = domError(jsErr.Object)
				return
			}
			err = fmt.Errorf("audio: %v", r)
		}
	}()
	fn()
	return nil
}
