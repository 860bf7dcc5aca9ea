package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/minaorangina/removeone/bots"
	"github.com/minaorangina/removeone/game"
	"github.com/minaorangina/removeone/store"
	"github.com/minaorangina/removeone/tournament"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func field() []tournament.Entrant {
	return []tournament.Entrant{
		{Name: "random", New: bots.RandomFactory()},
		{Name: "greedy", New: bots.GreedyFactory(bots.DefaultGreedyOpts())},
		{Name: "cardcounting", New: bots.CardCountingFactory(bots.DefaultCardCountingOpts())},
		{Name: "random-2", New: bots.RandomFactory()},
	}
}

// runTournament plays a small round robin into str, publishing to pub if it is not nil
func runTournament(t *testing.T, str *store.InMemoryStore, pub tournament.Publisher) *tournament.Summary {
	t.Helper()

	logger, _ := test.NewNullLogger()
	opts := tournament.Opts{
		GameOpts:        game.DefaultOpts(),
		Entrants:        field(),
		GamesPerMatchup: 3,
		Workers:         2,
		Seed:            11,
		Logger:          logger,
		Archive:         str,
	}
	if pub != nil {
		opts.Publisher = pub
	}

	tour, err := tournament.New(opts)
	require.NoError(t, err)

	summary, err := tour.Run(context.Background())
	require.NoError(t, err)
	return summary
}

func newTestServer(t *testing.T, str store.Store, hub *Hub) *SpectatorServer {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return NewServer(ServerOpts{Store: str, Hub: hub, Logger: logger})
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}
