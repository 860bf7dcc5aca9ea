package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/minaorangina/removeone/config"
	"github.com/minaorangina/removeone/engine"
	"github.com/minaorangina/removeone/server"
	"github.com/minaorangina/removeone/store"
	"github.com/minaorangina/removeone/tournament"
	"github.com/sirupsen/logrus"
)

func main() {
	envFile := flag.String("env", ".env", "settings file, read before the environment")
	narrate := flag.Bool("narrate", false, "print the first game round by round")
	flag.Parse()

	log := logrus.New()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.WithError(err).Fatal("could not load config")
	}
	log.SetLevel(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	archive := store.NewInMemoryStore()
	opts := cfg.TournamentOpts()
	opts.Logger = log
	opts.Archive = archive

	var hub *server.Hub
	if cfg.Addr != "" {
		hub = server.NewHub(log)
		opts.Publisher = hub

		srv := server.NewServer(server.ServerOpts{Addr: cfg.Addr, Store: archive, Hub: hub, Logger: log})
		go func() {
			if err := srv.Serve(ctx); err != nil {
				log.WithError(err).Error("spectator server stopped")
			}
		}()
	}

	tour, err := tournament.New(opts)
	if err != nil {
		log.WithError(err).Fatal("could not set up tournament")
	}

	summary, err := tour.Run(ctx)
	if err != nil {
		log.WithError(err).Warn("tournament did not finish")
	}

	report(log, summary)

	if *narrate && len(summary.Games) > 0 {
		if record := archive.FindRecord(summary.Games[0].GameID); record != nil {
			engine.Narrate(os.Stdout, record)
		}
	}

	if cfg.Addr != "" {
		log.WithField("addr", cfg.Addr).Info("tournament over, still serving until interrupted")
		<-ctx.Done()
	}
}

func report(log logrus.FieldLogger, summary *tournament.Summary) {
	for i, r := range summary.Ratings {
		log.WithFields(logrus.Fields{
			"place":  i + 1,
			"name":   r.Name,
			"rating": int(r.Value + 0.5),
			"games":  r.Games,
		}).Info("standing")
	}
	for _, e := range summary.Entrants {
		fields := logrus.Fields{
			"name":     e.Name,
			"wins":     e.Wins,
			"win_rate": e.WinRate,
		}
		if e.Decisions == 0 {
			log.WithFields(fields).Debug("entrant")
			continue
		}
		fields["decisions"] = e.Decisions
		fields["mean_decision"] = e.MeanDecision.String()
		fields["max_decision"] = e.MaxDecision.String()
		log.WithFields(fields).Info("entrant")
	}
	log.WithFields(logrus.Fields{
		"tournament_id": summary.ID,
		"champion":      summary.Champion,
		"errors":        summary.Errors,
	}).Info("champion")
}
