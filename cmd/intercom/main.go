// Command intercom is the device-dispatch core: it brings up the four
// peripheral actors (door, keypad, NFC, terminal), the TCP dispatcher the
// gateway speaks to, and the ambient logging/config/heartbeat plumbing
// around them.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"

	"github.com/brianmakesthings/cautious-axela/internal/actor"
	"github.com/brianmakesthings/cautious-axela/internal/config"
	"github.com/brianmakesthings/cautious-axela/internal/device/door"
	"github.com/brianmakesthings/cautious-axela/internal/device/keypad"
	"github.com/brianmakesthings/cautious-axela/internal/device/nfc"
	"github.com/brianmakesthings/cautious-axela/internal/device/terminal"
	"github.com/brianmakesthings/cautious-axela/internal/dispatch"
	"github.com/brianmakesthings/cautious-axela/internal/health"
	applogger "github.com/brianmakesthings/cautious-axela/internal/logger"
	"github.com/brianmakesthings/cautious-axela/internal/notify"
	"github.com/brianmakesthings/cautious-axela/internal/proto"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: ./config.yaml or ./configs/config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := applogger.New(applogger.Config{Level: cfg.Logger.Level, Format: cfg.Logger.Format, Dir: cfg.Logger.Dir})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	config.Watch(func(updated *config.Config) {
		zlog.Info("configuration reloaded")
		*cfg = *updated
	})

	gpio, bus, err := newHAL(cfg)
	if err != nil {
		zlog.Fatal("hal init failed", zap.Error(err))
	}
	defer gpio.Close()
	defer bus.Close()

	tracker := health.NewTracker()

	doorActor, err := door.New(gpio, cfg.GPIO.DoorPin, applogger.WithResource(zlog, "door"))
	if err != nil {
		zlog.Fatal("door actor init failed", zap.Error(err))
	}

	matrix, err := keypad.NewMatrix(gpio, toRowCols(cfg.GPIO.KeypadRows), toRowCols(cfg.GPIO.KeypadCols))
	if err != nil {
		zlog.Fatal("keypad matrix init failed", zap.Error(err))
	}

	notifier := notify.NewClient(notify.Config{
		AccountSID:   cfg.Notify.TwilioAccountSID,
		APIKey:       cfg.Notify.TwilioAPIKey,
		APIKeySecret: cfg.Notify.TwilioAPIKeySecret,
		FromNumber:   cfg.Notify.TwilioPhoneNumber,
	})

	keypadActor, err := keypad.New(matrix, cfg.KeyPad.CodeFile, doorActor.Internal(), notifier, applogger.WithResource(zlog, "keypad"))
	if err != nil {
		zlog.Fatal("keypad actor init failed", zap.Error(err))
	}
	if cfg.Notify.ToNumber != "" {
		keypadActor.SetPhoneNumber(keypad.PhoneNumber(cfg.Notify.ToNumber))
	}

	nfcActor, err := nfc.New(bus, uint16(cfg.I2C.Address), doorActor.Internal(), applogger.WithResource(zlog, "nfc"))
	if err != nil {
		zlog.Fatal("nfc actor init failed", zap.Error(err))
	}

	terminalActor := terminal.New(os.Stdin, os.Stdout, applogger.WithResource(zlog, "terminal"))

	server, err := dispatch.New(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port), zlog)
	if err != nil {
		zlog.Fatal("dispatch server init failed", zap.Error(err))
	}

	server.Route(proto.DoorGetState, doorActor.Mailbox())
	server.Route(proto.DoorSetState, doorActor.Mailbox())
	server.Route(proto.KeyPadGetCode, keypadActor.Mailbox())
	server.Route(proto.KeyPadSetCode, keypadActor.Mailbox())
	server.Route(proto.KeyPadGetPhoneNumber, keypadActor.Mailbox())
	server.Route(proto.KeyPadSetPhoneNumber, keypadActor.Mailbox())
	server.Route(proto.NFCGetID, nfcActor.Mailbox())
	server.Route(proto.NFCSetID, nfcActor.Mailbox())
	server.Route(proto.TerminalGetText, terminalActor.Mailbox())
	server.Route(proto.TerminalSetText, terminalActor.Mailbox())

	// The door and keypad actors touch go-rpio pin state, which assumes a
	// stable calling OS thread; each runs on its own locked goroutine the
	// way the pack's board-support layer pins its polling loops.
	go runLocked(health.Observe(doorActor, string(proto.ResourceDoor), tracker))
	go runLocked(health.Observe(keypadActor, string(proto.ResourceKeyPad), tracker))
	go runLocked(health.Observe(nfcActor, string(proto.ResourceNFC), tracker))
	go actor.Run(health.Observe(terminalActor, string(proto.ResourceTerminal), tracker))

	heartbeat, err := health.Start(tracker, "", zlog)
	if err != nil {
		zlog.Fatal("heartbeat init failed", zap.Error(err))
	}
	defer heartbeat.Stop()

	go func() {
		zlog.Info("dispatch server listening", zap.String("addr", server.Addr().String()))
		if err := server.Serve(); err != nil {
			zlog.Error("dispatch server stopped", zap.Error(err))
		}
	}()

	waitForShutdown(zlog, server)
}

// runLocked pins the calling goroutine to its OS thread before driving an
// actor's loop, required by go-rpio and periph.io's thread-affinity
// assumptions.
func runLocked(a actor.Actor) {
	runtime.LockOSThread()
	actor.Run(a)
}

func toRowCols(pins []int) [4]int {
	var out [4]int
	copy(out[:], pins)
	return out
}

func waitForShutdown(zlog *zap.Logger, server *dispatch.Server) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	zlog.Info("shutting down")
	server.Close()
}
