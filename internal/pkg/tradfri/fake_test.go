package tradfri

import (
	"context"
	"encoding/json"
	"sync"
)

type request struct {
	Method Method
	Path   string
	Body   string
}

// fakeTransport answers from canned payloads keyed by "method path" and records every request.
type fakeTransport struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	failWhen  func(r request) error
	requests  []request
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		responses: map[string]string{},
		errs:      map[string]error{},
	}
}

func (f *fakeTransport) on(method Method, path, payload string) *fakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method.String()+" "+path] = payload
	return f
}

func (f *fakeTransport) fail(method Method, path string, err error) *fakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[method.String()+" "+path] = err
	return f
}

func (f *fakeTransport) Request(_ context.Context, method Method, path string, body []byte) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := request{Method: method, Path: path, Body: string(body)}
	f.requests = append(f.requests, r)

	if f.failWhen != nil {
		if err := f.failWhen(r); err != nil {
			return nil, &TransportError{Method: method, Path: path, Err: err}
		}
	}
	key := method.String() + " " + path
	if err, ok := f.errs[key]; ok {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	if payload, ok := f.responses[key]; ok {
		return json.RawMessage(payload), nil
	}
	return OK, nil
}

func (f *fakeTransport) sent(method Method) []request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []request
	for _, r := range f.requests {
		if r.Method == method {
			out = append(out, r)
		}
	}
	return out
}

const (
	rgbBulbPayload = `{"3":{"0":"IKEA of Sweden","1":"TRADFRI bulb E27 CWS opal 600lm","3":"1.3.002"},` +
		`"3311":[{"5706":"dc4b31","5707":63828,"5708":65279,"5709":41084,"5710":21159,"5850":1,"5851":254,"9003":0}],` +
		`"5750":2,"9001":"Living room","9003":65537}`
	spectrumBulbPayload = `{"3":{"0":"IKEA of Sweden","1":"TRADFRI bulb GU10 WS 400lm","3":"1.2.217"},` +
		`"3311":[{"5706":"efd275","5850":0,"5851":100,"9003":0}],"5750":2,"9001":"Kitchen","9003":65538}`
	remotePayload = `{"3":{"0":"IKEA of Sweden","1":"TRADFRI remote control","3":"1.2.214"},` +
		`"5750":0,"9001":"Remote","9003":65536}`
	groupPayload = `{"5850":1,"5851":0,"9001":"Downstairs","9003":131073,` +
		`"9018":{"15002":{"9003":[65536,65537,65538]}}}`
)
