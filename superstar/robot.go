// Package superstar is pilot client for robots connected to superstar relay.
//
// Reads are polled GETs of {url}/{path}/pilot and {url}/{path}/sensors,
// throttled by refresh interval. Writes are signed JSON-RPC "set" batches
// POSTed to {url}. Robot keeps local copy of pilot document (the command
// schema), SetOpt edits only keys that superstar already defined.
package superstar

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/moose/log2"
	superstar_config "github.com/temoto/moose/superstar/config"
)

// Motor power opt and its keys.
const (
	OptPower   = "power"
	PowerLeft  = "L"
	PowerRight = "R"
)

type Robot struct {
	config    superstar_config.Config
	log       *log2.Log
	http      *http.Client
	now       func() time.Time
	baseURL   string
	path      string
	pilotPath string

	mu      sync.Mutex
	pilot   docCache
	sensors docCache
	last    *Request
}

type Option func(*Robot)

// WithHTTPClient replaces default client. Its Timeout is left as is.
func WithHTTPClient(c *http.Client) Option { return func(r *Robot) { r.http = c } }

func WithClock(now func() time.Time) Option { return func(r *Robot) { r.now = now } }

func New(config superstar_config.Config, log *log2.Log, opts ...Option) (*Robot, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Annotate(err, "superstar config")
	}
	if config.LogDebug {
		log.SetLevel(log2.LDebug)
	}
	r := &Robot{
		config:    config,
		log:       log,
		now:       time.Now,
		baseURL:   config.BaseURL(),
		path:      config.Path,
		pilotPath: config.Path + "/" + string(ResourcePilot),
	}
	for _, o := range opts {
		o(r)
	}
	if r.http == nil {
		r.http = &http.Client{Timeout: config.NetworkTimeout()}
	}

	interval := config.RefreshInterval()
	pilotGate := NewGate(interval)
	sensorsGate := pilotGate
	if !config.SharedGate {
		sensorsGate = NewGate(interval)
	}
	r.pilot = docCache{kind: ResourcePilot, doc: NewBranch(), gate: pilotGate}
	r.sensors = docCache{kind: ResourceSensors, doc: NewBranch(), gate: sensorsGate}
	return r, nil
}

// Init performs first pilot fetch.
// Error is returned, but Robot stays usable and will retry on next read.
func (r *Robot) Init(ctx context.Context) error {
	_, err := r.Pilot(ctx)
	return err
}

func (r *Robot) Path() string      { return r.path }
func (r *Robot) PilotPath() string { return r.pilotPath }
func (r *Robot) URL() string       { return r.baseURL }

func (r *Robot) ResourceURL(kind Resource) string {
	return r.baseURL + "/" + r.path + "/" + string(kind)
}

// Pilot returns copy of pilot document, refreshed if due.
// On fetch error, previous copy is returned along with the error.
func (r *Robot) Pilot(ctx context.Context) (*Branch, error) {
	err := r.refresh(ctx, &r.pilot)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pilot.doc.(*Branch).CloneBranch(), err
}

// Sensors returns copy of sensors snapshot, refreshed if due.
// On fetch error, previous copy is returned along with the error.
func (r *Robot) Sensors(ctx context.Context) (Value, error) {
	err := r.refresh(ctx, &r.sensors)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sensors.doc.Clone(), err
}

func (r *Robot) refresh(ctx context.Context, c *docCache) error {
	fresh, err := r.fetchIfDue(ctx, c)
	if err != nil {
		r.log.Errorf("superstar fetch %s/%s err=%v", r.path, c.kind, err)
		return err
	}
	if fresh {
		r.log.Debugf("superstar fetch %s/%s updated", r.path, c.kind)
	}
	return nil
}

// SetOpt merges value into pilot[name] locally, nothing is sent.
// Pilot document is refreshed first if due; fresh document replaces local edits.
// Unknown names and keys fail with *UnknownFieldError, pilot is unchanged then.
// Fetch error is logged and merge proceeds on cached document.
func (r *Robot) SetOpt(ctx context.Context, name string, value interface{}) error {
	v, err := ToValue(value)
	if err != nil {
		return errors.Annotatef(err, "opt=%s", name)
	}
	_ = r.refresh(ctx, &r.pilot)
	r.mu.Lock()
	defer r.mu.Unlock()
	return Merge(r.pilot.doc.(*Branch), name, v)
}

func (r *Robot) SetLeftPower(ctx context.Context, left float64) error {
	return r.SetOpt(ctx, OptPower, map[string]interface{}{PowerLeft: left})
}

func (r *Robot) SetRightPower(ctx context.Context, right float64) error {
	return r.SetOpt(ctx, OptPower, map[string]interface{}{PowerRight: right})
}

func (r *Robot) SetMotorPower(ctx context.Context, left, right float64) error {
	return r.SetOpt(ctx, OptPower, map[string]interface{}{PowerLeft: left, PowerRight: right})
}

// Drive sets both motors and sends.
// To change one motor only, use SetLeftPower or SetRightPower, then Send.
func (r *Robot) Drive(ctx context.Context, left, right float64) error {
	if err := r.SetMotorPower(ctx, left, right); err != nil {
		return err
	}
	return r.Send(ctx)
}

// Send signs current opts and POSTs them to superstar.
// No retry. Transport error or non-2xx status is returned, callers
// that prefer fire-and-forget may ignore it.
func (r *Robot) Send(ctx context.Context) error {
	req, err := r.buildRequest()
	if err != nil {
		return err
	}
	body, err := EncodeBatch(req)
	if err != nil {
		return err
	}
	r.log.Debugf("superstar send path=%s opts=%s", req.Params.Path, req.Params.Opts)

	err = r.post(ctx, body)
	if err != nil {
		r.log.Errorf("superstar send path=%s err=%v", req.Params.Path, err)
	}
	return err
}

// LastRequest returns last request built by Send.
func (r *Robot) LastRequest() (Request, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Request{}, false
	}
	return *r.last, true
}

// buildRequest serializes opts once under lock, same bytes are signed and sent.
func (r *Robot) buildRequest() (Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	opts, err := Compact(OptsWrapper(r.pilot.doc.(*Branch)))
	if err != nil {
		return Request{}, errors.Annotate(err, "serialize opts")
	}
	req := NewSetRequest(r.config.Secret, r.pilotPath, opts)
	r.last = &req
	return req, nil
}

func (r *Robot) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL, bytes.NewReader(body))
	if err != nil {
		return errors.Annotatef(err, "POST %s", r.baseURL)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.http.Do(req)
	if err != nil {
		return errors.Annotatef(err, "POST %s", r.baseURL)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("POST %s status=%s", r.baseURL, resp.Status)
	}
	return nil
}
