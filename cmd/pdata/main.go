// Command pdata runs a Dragonfly server with player data persisted through
// pdata.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/df-mc/dragonfly/server"
	"github.com/df-mc/dragonfly/server/player/chat"
	"github.com/oriumgames/pdata"
	"github.com/oriumgames/pdata/store"
)

func main() {
	path := flag.String("config", "pdata.yaml", "path to the YAML or JSONC configuration file")
	flag.Parse()

	cfg, err := pdata.LoadConfig(*path)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(log)

	builder := pdata.NewBuilder().
		Logger(log).
		Config(cfg).
		Bundle(pdata.VanillaBundle().
			OnChange(nil, func(e *pdata.ChangeEvent) {
				log.Debug("data changed", "trait", e.Trait.Name(), "result", e.Result)
			}).
			Build())

	if cfg.StorePath != "" {
		db, err := store.OpenSQLite(cfg.StorePath)
		if err != nil {
			log.Error("opening store", "path", cfg.StorePath, "error", err)
			os.Exit(1)
		}
		defer db.Close()
		builder.Store(db)
	}
	mngr := builder.Init()
	defer mngr.Shutdown()

	chat.Global.Subscribe(chat.StdoutSubscriber{})
	uc := server.DefaultConfig()
	uc.Network.Address = cfg.Address
	conf, err := uc.Config(log)
	if err != nil {
		log.Error("server config", "error", err)
		os.Exit(1)
	}

	srv := conf.New()
	srv.CloseOnProgramEnd()
	srv.Listen()
	for p := range srv.Accept() {
		sess, err := mngr.NewSession(p)
		if err != nil {
			log.Warn("creating session", "player", p.Name(), "error", err)
			p.Disconnect("Your data could not be loaded.")
			continue
		}
		p.Handle(pdata.NewHandler(sess, nil))
	}
}
