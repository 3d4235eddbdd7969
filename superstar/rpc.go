package superstar

import (
	"encoding/json"

	"github.com/juju/errors"
)

const (
	RPCVersion = "2.0"
	MethodSet  = "set"
	// superstar does not correlate responses, id is a constant.
	RequestID = 4
)

type Request struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  SetParams `json:"params"`
	ID      int       `json:"id"`
}

type SetParams struct {
	Path string `json:"path"`
	Opts string `json:"opts"`
	Auth string `json:"auth"`
}

// NewSetRequest signs path+opts with secret.
// opts must be the exact bytes that go into params.opts.
func NewSetRequest(secret, path string, opts []byte) Request {
	return Request{
		JSONRPC: RPCVersion,
		Method:  MethodSet,
		Params: SetParams{
			Path: path,
			Opts: string(opts),
			Auth: Sign(secret, AuthPayload(path, opts)),
		},
		ID: RequestID,
	}
}

// EncodeBatch wraps requests into JSON array, superstar only accepts batches.
func EncodeBatch(reqs ...Request) ([]byte, error) {
	if len(reqs) == 0 {
		return nil, errors.NotValidf("empty batch")
	}
	b, err := json.Marshal(reqs)
	return b, errors.Annotate(err, "encode batch")
}

// OptsWrapper builds {"value": pilot}, the document signed and sent as params.opts.
func OptsWrapper(pilot *Branch) *Branch {
	w := NewBranch()
	if pilot == nil {
		pilot = NewBranch()
	}
	w.Set("value", pilot.CloneBranch())
	return w
}
