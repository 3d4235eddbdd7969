// Sign pilot document offline, prints auth code or full request batch.
package sign

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/juju/errors"
	"github.com/temoto/moose/cmd/moose/subcmd"
	"github.com/temoto/moose/config"
	"github.com/temoto/moose/log2"
	"github.com/temoto/moose/superstar"
)

const modName = "sign"

var Mod = subcmd.Mod{Name: modName, Usage: "[-batch] [pilot-json] sign pilot document, reads stdin without argument", Main: Main}

func Main(ctx context.Context, cfg *config.Config, log *log2.Log, args []string) error {
	return run(cfg, args, os.Stdin, os.Stdout)
}

func run(cfg *config.Config, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet(modName, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	batch := fs.Bool("batch", false, "print JSON-RPC batch instead of auth code")
	if err := fs.Parse(args); err != nil {
		return errors.Annotate(err, modName)
	}

	var input []byte
	if fs.NArg() > 0 {
		input = []byte(strings.Join(fs.Args(), " "))
	} else {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return errors.Annotate(err, "read stdin")
		}
		input = bytes.TrimSpace(b)
	}

	req, err := newRequest(cfg, input)
	if err != nil {
		return err
	}
	if !*batch {
		_, err = fmt.Fprintln(stdout, req.Params.Auth)
		return err
	}
	body, err := superstar.EncodeBatch(req)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s\n", body)
	return err
}

func newRequest(cfg *config.Config, input []byte) (superstar.Request, error) {
	if err := cfg.Robot.Validate(); err != nil {
		return superstar.Request{}, err
	}
	v, err := superstar.ParseJSON(input)
	if err != nil {
		return superstar.Request{}, errors.Annotate(err, "pilot json")
	}
	pilot, ok := v.(*superstar.Branch)
	if !ok {
		return superstar.Request{}, errors.NotValidf("pilot json must be object")
	}
	opts, err := superstar.Compact(superstar.OptsWrapper(pilot))
	if err != nil {
		return superstar.Request{}, err
	}
	path := cfg.Robot.Path + "/" + string(superstar.ResourcePilot)
	return superstar.NewSetRequest(cfg.Robot.Secret, path, opts), nil
}
