package drive

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/c-bata/go-prompt"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/moose/helpers"
	"github.com/temoto/moose/log2"
	"github.com/temoto/moose/superstar"
	superstar_config "github.com/temoto/moose/superstar/config"
)

const testPilot = `{"power":{"L":0,"R":0},"cmd":{"run":"","arg":""}}`

func newTestSession(t testing.TB) (*session, *helpers.MockHTTP, *bytes.Buffer) {
	mock := &helpers.MockHTTP{Routes: map[string]string{
		"GET /superstar/rover/pilot":   testPilot,
		"GET /superstar/rover/sensors": `{"sonar":[12,40],"bat":7.2}`,
		"POST /superstar":              "",
	}}
	cfg := superstar_config.Config{
		Path:      "rover",
		Secret:    "pw",
		URL:       "http://superstar.test/superstar",
		RefreshMs: 60000,
	}
	r, err := superstar.New(cfg, log2.NewTest(t, log2.LDebug), superstar.WithHTTPClient(mock.Client()))
	require.NoError(t, err)
	require.NoError(t, r.Init(context.Background()))
	buf := &bytes.Buffer{}
	return &session{robot: r, w: buf}, mock, buf
}

func TestDriveSends(t *testing.T) {
	t.Parallel()

	s, mock, _ := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.exec(ctx, "drive 50 -25.5"))

	req, ok := s.robot.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "rover/pilot", req.Params.Path)
	assert.Equal(t, `{"value":{"power":{"L":50,"R":-25.5},"cmd":{"run":"","arg":""}}}`, req.Params.Opts)
	assert.Equal(t, "4e81c7f00176142b8d2ccd32d337f5c211d53a9f38f73c00e71c9b6ed0e17ba2", req.Params.Auth)

	posts := 0
	for _, r := range mock.Requests() {
		if r.Method == "POST" {
			posts++
		}
	}
	assert.Equal(t, 1, posts)
}

func TestLocalEditsThenSend(t *testing.T) {
	t.Parallel()

	s, _, buf := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.exec(ctx, "left 1"))
	require.NoError(t, s.exec(ctx, "right -1"))
	require.NoError(t, s.exec(ctx, `set cmd {"run": "beep"}`))
	_, ok := s.robot.LastRequest()
	assert.False(t, ok, "local edits must not send")

	require.NoError(t, s.exec(ctx, "pilot"))
	assert.Equal(t, `{"power":{"L":1,"R":-1},"cmd":{"run":"beep","arg":""}}`+"\n", buf.String())

	require.NoError(t, s.exec(ctx, "send"))
	req, ok := s.robot.LastRequest()
	require.True(t, ok)
	assert.Equal(t, `{"value":{"power":{"L":1,"R":-1},"cmd":{"run":"beep","arg":""}}}`, req.Params.Opts)

	require.NoError(t, s.exec(ctx, "stop"))
	req, _ = s.robot.LastRequest()
	assert.Equal(t, `{"value":{"power":{"L":0,"R":0},"cmd":{"run":"beep","arg":""}}}`, req.Params.Opts)
}

func TestExecErrors(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestSession(t)
	ctx := context.Background()
	type Case struct {
		line  string
		check func(error) bool
	}
	cases := []Case{
		{"fly 1", errors.IsNotFound},
		{"drive 1", errors.IsNotValid},
		{"drive one two", errors.IsNotValid},
		{"left", errors.IsNotValid},
		{"set power", errors.IsNotValid},
		{"set lights 1", superstar.IsUnknownField},
		{"set power {\"Z\":1}", superstar.IsUnknownField},
	}
	for _, c := range cases {
		err := s.exec(ctx, c.line)
		require.Error(t, err, "line=%s", c.line)
		assert.True(t, c.check(err), "line=%s err=%v", c.line, err)
	}
	assert.NoError(t, s.exec(ctx, "   "))
}

func TestSensorsAndHelp(t *testing.T) {
	t.Parallel()

	s, _, buf := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.exec(ctx, "sensors"))
	assert.Equal(t, `{"sonar":[12,40],"bat":7.2}`+"\n", buf.String())

	buf.Reset()
	require.NoError(t, s.exec(ctx, "help"))
	out := buf.String()
	for _, name := range actionNames() {
		assert.Contains(t, out, name+" ")
	}
}

func TestComplete(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestSession(t)
	d := prompt.NewBuffer()
	d.InsertText("se", false, true)
	got := s.complete(*d.Document())
	names := make([]string, len(got))
	for i, sg := range got {
		names[i] = sg.Text
	}
	assert.Equal(t, []string{"send", "sensors", "set"}, names)

	d.InsertText("nd 1", false, true)
	assert.Empty(t, s.complete(*d.Document()))
	assert.True(t, strings.HasPrefix(actions["drive"].usage, "drive"))
}
