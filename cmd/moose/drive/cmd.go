// Interactive pilot: edit opts and drive the robot from a prompt.
package drive

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/c-bata/go-prompt"
	"github.com/juju/errors"
	"github.com/temoto/moose/cmd/moose/subcmd"
	"github.com/temoto/moose/config"
	"github.com/temoto/moose/helpers/cli"
	"github.com/temoto/moose/log2"
	"github.com/temoto/moose/superstar"
)

const modName = "drive"

var Mod = subcmd.Mod{Name: modName, Usage: "interactive pilot prompt", Main: Main}

const stopTimeout = 3 * time.Second

func Main(ctx context.Context, cfg *config.Config, log *log2.Log, args []string) error {
	robot, err := superstar.New(cfg.Robot, log)
	if err != nil {
		return err
	}
	if err := robot.Init(ctx); err != nil {
		log.Errorf("drive init err=%v, opts fail until superstar answers", err)
	}

	s := &session{robot: robot, w: os.Stdout}
	exec := func(line string) {
		if err := s.exec(ctx, line); err != nil {
			log.Error(err)
		}
	}
	onSignal := func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		if err := robot.Drive(stopCtx, 0, 0); err != nil {
			log.Errorf("stop on exit err=%v", err)
		}
	}
	cli.MainLoop("moose "+robot.Path(), exec, s.complete, onSignal)
	return nil
}

type session struct {
	robot *superstar.Robot
	w     io.Writer
}

type action struct {
	args  int
	usage string
	run   func(ctx context.Context, s *session, args []string) error
}

var actions = map[string]action{
	"drive": {2, "drive L R - set motor power and send", func(ctx context.Context, s *session, args []string) error {
		l, r, err := parsePower(args)
		if err != nil {
			return err
		}
		return s.robot.Drive(ctx, l, r)
	}},
	"stop": {0, "stop - drive 0 0", func(ctx context.Context, s *session, args []string) error {
		return s.robot.Drive(ctx, 0, 0)
	}},
	"power": {2, "power L R - set motor power locally", func(ctx context.Context, s *session, args []string) error {
		l, r, err := parsePower(args)
		if err != nil {
			return err
		}
		return s.robot.SetMotorPower(ctx, l, r)
	}},
	"left": {1, "left N - set left motor power locally", func(ctx context.Context, s *session, args []string) error {
		v, err := parseFloat(args[0])
		if err != nil {
			return err
		}
		return s.robot.SetLeftPower(ctx, v)
	}},
	"right": {1, "right N - set right motor power locally", func(ctx context.Context, s *session, args []string) error {
		v, err := parseFloat(args[0])
		if err != nil {
			return err
		}
		return s.robot.SetRightPower(ctx, v)
	}},
	"set": {-2, "set NAME JSON - merge JSON value into opt locally", func(ctx context.Context, s *session, args []string) error {
		v, err := superstar.ParseJSON([]byte(strings.Join(args[1:], " ")))
		if err != nil {
			return err
		}
		return s.robot.SetOpt(ctx, args[0], v)
	}},
	"send": {0, "send - sign and send current opts", func(ctx context.Context, s *session, args []string) error {
		return s.robot.Send(ctx)
	}},
	"pilot": {0, "pilot - print pilot document", func(ctx context.Context, s *session, args []string) error {
		p, err := s.robot.Pilot(ctx)
		return s.print(p, err)
	}},
	"sensors": {0, "sensors - print sensors snapshot", func(ctx context.Context, s *session, args []string) error {
		v, err := s.robot.Sensors(ctx)
		return s.print(v, err)
	}},
}

func (s *session) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := fields[0], fields[1:]
	if name == "help" {
		s.help()
		return nil
	}
	a, ok := actions[name]
	if !ok {
		return errors.NotFoundf("command '%s' (try help)", name)
	}
	// negative means at least -args
	if (a.args >= 0 && len(args) != a.args) || (a.args < 0 && len(args) < -a.args) {
		return errors.NotValidf("usage: %s", a.usage)
	}
	return a.run(ctx, s, args)
}

func (s *session) print(v superstar.Value, fetchErr error) error {
	b, err := superstar.Compact(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.w, "%s\n", b)
	if fetchErr != nil {
		return errors.Annotate(fetchErr, "shown cached value")
	}
	return err
}

func (s *session) help() {
	for _, name := range actionNames() {
		fmt.Fprintln(s.w, actions[name].usage)
	}
}

func (s *session) complete(d prompt.Document) []prompt.Suggest {
	if strings.Contains(d.TextBeforeCursor(), " ") {
		return nil
	}
	suggests := make([]prompt.Suggest, 0, len(actions))
	for _, name := range actionNames() {
		suggests = append(suggests, prompt.Suggest{Text: name, Description: actions[name].usage})
	}
	return prompt.FilterHasPrefix(suggests, d.GetWordBeforeCursor(), true)
}

func actionNames() []string {
	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.NotValidf("number '%s'", s)
	}
	return v, nil
}

func parsePower(args []string) (float64, float64, error) {
	l, err := parseFloat(args[0])
	if err != nil {
		return 0, 0, err
	}
	r, err := parseFloat(args[1])
	return l, r, err
}
