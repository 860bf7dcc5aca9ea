package tournament

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sync"

	"github.com/minaorangina/removeone/bots"
	"github.com/minaorangina/removeone/engine"
	"github.com/minaorangina/removeone/game"
	"github.com/minaorangina/removeone/rating"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultKFactor       = 32
	defaultInitialRating = 1500
)

// Entrant is a named strategy. New is called once per seat per game.
type Entrant struct {
	Name string
	New  bots.Factory
}

// Archive keeps finished games and tournaments
type Archive interface {
	AddRecord(r *engine.Record) error
	AddSummary(s *Summary) error
}

// Publisher is told about every game as soon as its ratings are applied, in schedule order
type Publisher interface {
	Publish(r GameResult)
}

type Opts struct {
	GameOpts game.RemoveOneOpts
	Entrants []Entrant
	Format   Format
	// Seats is the table size for round robin. It defaults to GameOpts.Players.
	// Knockout matches are always heads-up.
	Seats           int
	GamesPerMatchup int
	// Workers defaults to the number of CPUs
	Workers       int
	KFactor       float64
	InitialRating float64
	Seed          int64
	Logger        logrus.FieldLogger
	Archive       Archive
	Publisher     Publisher
	// ProfileDecisions times every bot decision into the results and entrant stats
	ProfileDecisions bool
}

type Tournament struct {
	id    string
	opts  Opts
	log   logrus.FieldLogger
	table *rating.Table
	seeds *rand.Rand
	// gameSeeds holds one seed per scheduled game, by game index
	gameSeeds []int64
}

func New(opts Opts) (*Tournament, error) {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.KFactor == 0 {
		opts.KFactor = defaultKFactor
	}
	if opts.InitialRating == 0 {
		opts.InitialRating = defaultInitialRating
	}
	if opts.GamesPerMatchup == 0 {
		opts.GamesPerMatchup = 1
	}
	if opts.Seats == 0 {
		opts.Seats = opts.GameOpts.Players
	}
	if opts.Format == SingleElimination {
		opts.Seats = 2
	}
	opts.GameOpts.Players = opts.Seats

	if err := validate(opts); err != nil {
		return nil, err
	}

	id := uuid.NewV4().String()
	t := &Tournament{
		id:    id,
		opts:  opts,
		log:   opts.Logger.WithFields(logrus.Fields{"tournament_id": id, "format": opts.Format.String()}),
		table: rating.NewTable(opts.KFactor, opts.InitialRating),
		seeds: rand.New(rand.NewSource(opts.Seed)),
	}
	for _, e := range opts.Entrants {
		t.table.Register(e.Name)
	}
	return t, nil
}

func validate(opts Opts) error {
	if len(opts.Entrants) < 2 {
		return &game.ConfigurationError{Field: "entrants", Reason: "need at least two"}
	}
	seen := map[string]bool{}
	for _, e := range opts.Entrants {
		if e.Name == "" {
			return &game.ConfigurationError{Field: "entrants", Reason: "every entrant needs a name"}
		}
		if seen[e.Name] {
			return &game.ConfigurationError{Field: "entrants", Reason: fmt.Sprintf("%q entered twice", e.Name)}
		}
		if e.New == nil {
			return &game.ConfigurationError{Field: "entrants", Reason: fmt.Sprintf("%q has no bot factory", e.Name)}
		}
		seen[e.Name] = true
	}
	if _, ok := FormatNames[opts.Format]; !ok {
		return &game.ConfigurationError{Field: "format", Reason: "unknown"}
	}
	if opts.Seats > len(opts.Entrants) {
		return &game.ConfigurationError{Field: "seats", Reason: "more seats than entrants"}
	}
	if opts.GamesPerMatchup < 0 {
		return &game.ConfigurationError{Field: "games per matchup", Reason: "must be positive"}
	}
	if opts.KFactor < 0 {
		return &game.ConfigurationError{Field: "k factor", Reason: "must be positive"}
	}
	return opts.GameOpts.Validate()
}

func (t *Tournament) ID() string {
	return t.id
}

// Ratings is the live rating table
func (t *Tournament) Ratings() *rating.Table {
	return t.table
}

// Run plays the whole schedule. Games that fail are reported in the summary and left out of
// the ratings; only a cancelled context stops the tournament early.
func (t *Tournament) Run(ctx context.Context) (*Summary, error) {
	names := make([]string, len(t.opts.Entrants))
	for i, e := range t.opts.Entrants {
		names[i] = e.Name
	}

	agg := &aggregator{
		t:     t,
		tally: newTally(names),
		summary: &Summary{
			ID:     t.id,
			Format: t.opts.Format,
			Seed:   t.opts.Seed,
			Games:  []GameResult{},
		},
	}
	t.log.WithField("entrants", len(names)).Info("tournament started")

	var err error
	switch t.opts.Format {
	case RoundRobin:
		err = t.runRoundRobin(ctx, agg)
	case SingleElimination:
		err = t.runSingleElimination(ctx, agg)
	}

	summary := agg.finish()
	if t.opts.Archive != nil {
		if archiveErr := t.opts.Archive.AddSummary(summary); archiveErr != nil {
			t.log.WithError(archiveErr).Warn("could not archive summary")
		}
	}

	fields := logrus.Fields{"games": len(summary.Games), "errors": summary.Errors, "champion": summary.Champion}
	if err != nil {
		t.log.WithError(err).WithFields(fields).Warn("tournament stopped early")
		return summary, err
	}
	t.log.WithFields(fields).Info("tournament finished")
	return summary, nil
}

// job is one game waiting for a worker
type job struct {
	index   int
	round   int
	seed    int64
	seating []int // entrant indices, by seat
}

// outcome is what a worker hands back
type outcome struct {
	result GameResult
	record *engine.Record
}

// seedSchedule draws every game seed before any game is played, so seeds do not depend on scheduling
func (t *Tournament) seedSchedule(games int) {
	t.gameSeeds = make([]int64, games)
	for i := range t.gameSeeds {
		t.gameSeeds[i] = t.seeds.Int63()
	}
}

// play runs a batch of games on the worker pool. Results are applied strictly in index order,
// so the ratings do not depend on which worker finishes first.
func (t *Tournament) play(ctx context.Context, seatings [][]int, agg *aggregator) error {
	if len(seatings) == 0 {
		return nil
	}

	jobs := make(chan job, len(seatings))
	results := make(chan outcome, len(seatings))

	var wg sync.WaitGroup
	for w := 0; w < t.opts.Workers; w++ {
		wg.Add(1)
		go t.worker(ctx, &wg, jobs, results)
	}

	first := agg.next
	for i, seating := range seatings {
		index := first + i
		jobs <- job{index: index, round: agg.round, seed: t.gameSeeds[index], seating: seating}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	pending := map[int]outcome{}
	for o := range results {
		pending[o.result.Index] = o
		for {
			ready, ok := pending[agg.next]
			if !ok {
				break
			}
			delete(pending, agg.next)
			agg.apply(ready)
		}
	}

	return ctx.Err()
}

func (t *Tournament) worker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan job, results chan<- outcome) {
	defer wg.Done()

	for j := range jobs {
		results <- t.playGame(ctx, j)
	}
}

func (t *Tournament) playGame(ctx context.Context, j job) outcome {
	botSeeds := rand.New(rand.NewSource(j.seed))
	players := make([]bots.Bot, len(j.seating))
	names := make([]string, len(j.seating))
	for seat, entrant := range j.seating {
		players[seat] = t.opts.Entrants[entrant].New(botSeeds.Int63())
		names[seat] = t.opts.Entrants[entrant].Name
	}

	result := GameResult{
		Index:        j.index,
		Round:        j.round,
		Seed:         j.seed,
		Participants: names,
	}

	e, err := engine.NewGameEngine(engine.GameEngineOpts{
		GameOpts:  t.opts.GameOpts,
		Bots:      players,
		SeatNames: names,
		Seed:      j.seed,
		Logger:    t.log.WithField("game_index", j.index),

		ProfileDecisions: t.opts.ProfileDecisions,
	})
	if err != nil {
		result.Err = err.Error()
		return outcome{result: result}
	}
	result.GameID = e.ID()

	record, err := e.Run(ctx)
	result.Decisions = record.Decisions
	if err != nil {
		result.Err = err.Error()
		var forfeit *engine.ForfeitError
		if errors.As(err, &forfeit) {
			result.Forfeit = names[forfeit.Seat]
		}
		return outcome{result: result, record: record}
	}

	result.Scores = record.Scores()
	result.Ranks = record.Ranks()
	result.EliminationOrder = append([]int{}, record.Final.EliminationOrder...)
	return outcome{result: result, record: record}
}

// aggregator is only ever touched by the goroutine running the tournament
type aggregator struct {
	t       *Tournament
	tally   *tally
	summary *Summary
	next    int
	round   int
}

func (a *aggregator) apply(o outcome) {
	r := o.result
	log := a.t.log.WithFields(logrus.Fields{"game_index": r.Index, "game_id": r.GameID})

	if r.Err == "" {
		deltas, err := a.t.table.Apply(r.Participants, r.Ranks)
		if err != nil {
			r.Err = err.Error()
		} else {
			r.RatingDeltas = deltas
		}
	}

	if r.Err != "" {
		a.summary.Errors++
		log.WithField("error", r.Err).Warn("game failed; left out of the ratings")
	} else {
		a.tally.add(r)
		log.WithField("winner", r.Winner()).Debug("game rated")
	}

	if o.record != nil && a.t.opts.Archive != nil {
		if err := a.t.opts.Archive.AddRecord(o.record); err != nil {
			log.WithError(err).Warn("could not archive game")
		}
	}
	if a.t.opts.Publisher != nil {
		a.t.opts.Publisher.Publish(r)
	}

	a.summary.Games = append(a.summary.Games, r)
	a.next++
}

func (a *aggregator) finish() *Summary {
	s := a.summary
	s.Ratings = a.t.table.Snapshot()
	s.Entrants = a.tally.entrants(a.t.table)
	s.HeadToHead = a.tally.headToHead()
	if s.Champion == "" && len(s.Ratings) > 0 && len(s.Games) > s.Errors {
		s.Champion = s.Ratings[0].Name
	}
	return s
}
