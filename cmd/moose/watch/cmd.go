// Poll robot sensors, print and mirror them to MQTT until stopped.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/moose/cmd/moose/subcmd"
	"github.com/temoto/moose/config"
	"github.com/temoto/moose/helpers"
	"github.com/temoto/moose/log2"
	"github.com/temoto/moose/mirror"
	"github.com/temoto/moose/superstar"
)

const (
	modName    = "watch"
	maxBackoff = time.Minute
)

var Mod = subcmd.Mod{Name: modName, Usage: "poll sensors, print and mirror to MQTT", Main: Main}

func Main(ctx context.Context, cfg *config.Config, log *log2.Log, args []string) error {
	robot, err := superstar.New(cfg.Robot, log)
	if err != nil {
		return err
	}
	mir, err := mirror.New(log.Clone(log2.LInfo), cfg.Mirror, robot.Path())
	if err != nil {
		return err
	}
	defer mir.Close()

	w := &watcher{log: log, robot: robot, mirror: mir}
	w.backoff = helpers.Backoff{Min: cfg.WatchInterval(), Max: maxBackoff, K: 2}
	if cfg.Watch.Print {
		w.out = os.Stdout
	}

	a := alive.NewAlive()
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigch:
			log.Infof("watch stopping on signal=%v", sig)
			a.Stop()
		case <-a.StopChan():
		}
	}()

	subcmd.SdNotify(log, "READY=1")
	log.Infof("watch robot=%s interval=%v mirror=%s", robot.Path(), cfg.WatchInterval(), mir.Topic())
	w.run(ctx, a, cfg.WatchInterval())
	subcmd.SdNotify(log, "STOPPING=1")
	return nil
}

type watcher struct {
	log    *log2.Log
	robot  *superstar.Robot
	mirror *mirror.Mirror
	out    io.Writer // nil disables printing

	backoff helpers.Backoff
}

// run ticks until a is stopped, first tick is immediate.
// Failed ticks slow down polling up to maxBackoff.
func (w *watcher) run(ctx context.Context, a *alive.Alive, interval time.Duration) {
	if !a.Add(1) {
		return
	}
	defer a.Done()

	tmr := time.NewTimer(0)
	defer tmr.Stop()
	for {
		select {
		case <-tmr.C:
		case <-a.StopChan():
			return
		case <-ctx.Done():
			a.Stop()
			return
		}

		err := w.tick(ctx)
		delay := interval
		if d := w.backoff.Update(err == nil); d > delay {
			delay = d
		}
		if err != nil {
			w.log.Errorf("watch next=%v err=%v", delay, err)
		}
		tmr.Reset(delay)
	}
}

// tick prints and mirrors current sensors snapshot.
// Cached snapshot is still used when fetch failed.
func (w *watcher) tick(ctx context.Context) error {
	v, fetchErr := w.robot.Sensors(ctx)
	if superstar.Empty(v) {
		return fetchErr
	}
	if w.out != nil {
		b, err := superstar.Compact(v)
		if err != nil {
			return errors.Annotate(err, "watch print")
		}
		fmt.Fprintf(w.out, "%s\n", b)
	}
	if _, err := w.mirror.Sensors(v); err != nil {
		return err
	}
	return fetchErr
}
