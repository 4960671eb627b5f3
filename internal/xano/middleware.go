package xano

import "net/http"

// Middleware observes every call made through a Client. OnRequest runs right
// before transmission, OnResponse right after the response headers arrive and
// before the body is decoded. A returned error aborts the call with that error.
type Middleware interface {
	OnRequest(req *http.Request) error
	OnResponse(resp *http.Response) error
}

// MiddlewareFuncs builds a Middleware from optional hooks.
type MiddlewareFuncs struct {
	Request  func(req *http.Request) error
	Response func(resp *http.Response) error
}

func (m MiddlewareFuncs) OnRequest(req *http.Request) error {
	if m.Request == nil {
		return nil
	}
	return m.Request(req)
}

func (m MiddlewareFuncs) OnResponse(resp *http.Response) error {
	if m.Response == nil {
		return nil
	}
	return m.Response(resp)
}
