package superstar

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/juju/errors"
)

type Resource string

const (
	ResourcePilot   Resource = "pilot"
	ResourceSensors Resource = "sensors"
)

// docCache keeps last good document of one resource.
// doc is guarded by Robot.mu, gate is atomic on its own.
// Several caches may share one Gate.
type docCache struct {
	kind Resource
	doc  Value
	gate *Gate
}

// fetchIfDue returns true after successful refresh.
// false and nil error means not due or superstar returned empty document.
// Network round trip runs without Robot.mu, only the swap is locked,
// so Send and local edits never wait for a slow GET.
// On error cache and gate are untouched.
func (r *Robot) fetchIfDue(ctx context.Context, c *docCache) (bool, error) {
	now := r.now()
	if !c.gate.Due(now) {
		return false, nil
	}
	doc, err := r.get(ctx, c.kind)
	if err != nil {
		return false, err
	}
	if Empty(doc) {
		r.log.Debugf("superstar %s/%s empty, keep cached", r.path, c.kind)
		return false, nil
	}
	if c.kind == ResourcePilot {
		if _, ok := doc.(*Branch); !ok {
			return false, errors.NotValidf("pilot document type %T", doc)
		}
	}
	r.mu.Lock()
	c.doc = doc
	r.mu.Unlock()
	c.gate.Mark(now)
	return true, nil
}

func (r *Robot) get(ctx context.Context, kind Resource) (Value, error) {
	url := r.ResourceURL(kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Annotatef(err, "GET %s", url)
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, errors.Annotatef(err, "GET %s", url)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Annotatef(err, "GET %s read body", url)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("GET %s status=%s", url, resp.Status)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	doc, err := ParseJSON(body)
	return doc, errors.Annotatef(err, "GET %s", url)
}
