// Package sim replays encounter scripts against the combat engine.
//
// A replay is deterministic: the same script, seed and stat blocks always
// produce the same report. The runner never decides anything; it issues the
// script's commands for whoever is acting and records what the engine
// answered.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/udisondev/xander/internal/cause"
	"github.com/udisondev/xander/internal/combat"
	"github.com/udisondev/xander/internal/dice"
	"github.com/udisondev/xander/internal/geom"
	"github.com/udisondev/xander/internal/loader"
	"github.com/udisondev/xander/internal/stats"
)

const tracerName = "github.com/udisondev/xander/internal/sim"

// Options configure a replay.
type Options struct {
	// Seed is used when the script has none.
	Seed uint64
	// StatblockDir resolves relative stat-block paths.
	StatblockDir string
	// Arena is used when the script has none.
	Arena ArenaSize
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// Event is the engine's answer to one command.
type Event struct {
	Index  int
	Round  int
	Actor  string
	Kind   string
	Legal  bool
	Reason string
	Detail string
}

func (e Event) String() string {
	status := "ok"
	if !e.Legal {
		status = e.Reason
	}
	if e.Detail == "" {
		return fmt.Sprintf("#%d r%d %s %s: %s", e.Index, e.Round, e.Actor, e.Kind, status)
	}
	return fmt.Sprintf("#%d r%d %s %s: %s (%s)", e.Index, e.Round, e.Actor, e.Kind, status, e.Detail)
}

// State is a combatant at the end of the replay.
type State struct {
	Name       string
	HP         int
	MaxHP      int
	Dead       bool
	Conditions []string
}

// Report summarises a replay.
type Report struct {
	Script     string
	Seed       uint64
	Round      int
	Events     []Event
	Combatants []State
	Survivors  []string
}

// Run replays s.
//
// Workflow:
//  1. Seed one roller for the whole replay: stat blocks, initiative and
//     attacks all roll with it.
//  2. Load every combatant's stat block and join the combat.
//  3. Step the first turn, then issue each command for whoever is acting.
//  4. Collect final hit points, conditions and survivors.
//
// Illegal commands are recorded, not returned: only malformed input,
// unreadable stat blocks and cancellation fail the run.
func Run(ctx context.Context, s *Script, opts Options) (*Report, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	seed := opts.Seed
	if s.Seed != nil {
		seed = *s.Seed
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(tracerName)

	ctx, span := tracer.Start(ctx, "sim.Run", trace.WithAttributes(
		attribute.String("xander.script", s.Name),
		attribute.Int64("xander.seed", int64(seed)),
		attribute.Int("xander.commands", len(s.Commands)),
	))
	defer span.End()

	rep, err := run(ctx, tracer, s, seed, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("xander.rounds", rep.Round),
		attribute.StringSlice("xander.survivors", rep.Survivors),
	)
	return rep, nil
}

func run(ctx context.Context, tracer trace.Tracer, s *Script, seed uint64, opts Options) (*Report, error) {
	roller := dice.NewRoller(seed)
	arena := opts.Arena
	if s.Arena != nil {
		arena = *s.Arena
	}
	c := combat.New(roller, combat.NewSimpleArena(arena.Width, arena.Height))
	defer c.Close()

	if err := join(c, loader.New(roller), s, opts.StatblockDir); err != nil {
		return nil, err
	}

	rep := &Report{Script: s.Name, Seed: seed}
	r := &replay{combat: c, roller: roller, turn: c.Step()}
	for i, cmd := range s.Commands {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ev, err := r.issue(ctx, tracer, i, cmd)
		if err != nil {
			return nil, fmt.Errorf("commands[%d] (%s): %w", i, cmd.Kind(), err)
		}
		slog.Debug("command replayed", "script", s.Name, "event", ev.String())
		rep.Events = append(rep.Events, ev)
	}

	rep.Round = c.Initiative().Round()
	for _, cb := range c.Initiative().Order() {
		st := State{
			Name:  cb.Name,
			HP:    cb.Stats.Health.HP(),
			MaxHP: cb.Stats.Health.MaxHP(),
			Dead:  cb.Stats.Health.Dead(),
		}
		for _, cond := range cb.Stats.Conditions.Active() {
			st.Conditions = append(st.Conditions, cond.String())
		}
		rep.Combatants = append(rep.Combatants, st)
		if !st.Dead {
			rep.Survivors = append(rep.Survivors, cb.Name)
		}
	}
	return rep, nil
}

// join loads stat blocks once per file and builds a fresh block for every
// combatant from the cached document.
func join(c *combat.Combat, ld *loader.Loader, s *Script, dir string) error {
	docs := make(map[string][]byte)
	for i, entry := range s.Combatants {
		path := entry.Statblock
		if !filepath.IsAbs(path) && dir != "" {
			path = filepath.Join(dir, path)
		}
		data, ok := docs[path]
		if !ok {
			var err error
			if data, err = os.ReadFile(path); err != nil {
				return fmt.Errorf("combatants[%d]: reading statblock %s: %w", i, path, err)
			}
			docs[path] = data
		}
		cr, err := ld.Parse(data)
		if err != nil {
			return fmt.Errorf("combatants[%d]: parsing statblock %s: %w", i, path, err)
		}

		name := entry.Name
		if name == "" {
			name = cr.Stats.Name
		}
		if _, err := c.Join(combat.Entrant{
			Name:       name,
			Stats:      cr.Stats,
			Position:   geom.Pt(entry.Position[0], entry.Position[1]),
			Attacks:    cr.Attacks,
			Initiative: entry.Initiative,
		}); err != nil {
			return fmt.Errorf("combatants[%d]: %w", i, err)
		}
	}
	return nil
}

type replay struct {
	combat *combat.Combat
	roller *dice.Roller
	turn   *combat.TurnCtx
}

func (r *replay) issue(ctx context.Context, tracer trace.Tracer, i int, cmd Command) (Event, error) {
	_, span := tracer.Start(ctx, "sim.command", trace.WithAttributes(
		attribute.Int("xander.command.index", i),
		attribute.String("xander.command.kind", cmd.Kind()),
	))
	defer span.End()

	ev, err := r.execute(cmd)
	ev.Index, ev.Kind = i, cmd.Kind()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ev, err
	}
	span.SetAttributes(
		attribute.Int("xander.round", ev.Round),
		attribute.String("xander.actor", ev.Actor),
		attribute.Bool("xander.legal", ev.Legal),
	)
	if !ev.Legal {
		span.SetAttributes(attribute.String("xander.reason", ev.Reason))
	}
	return ev, nil
}

func (r *replay) execute(cmd Command) (Event, error) {
	actor, err := r.turn.Combatant()
	if err != nil {
		return Event{}, err
	}
	ev := Event{Round: r.combat.Initiative().Round(), Actor: actor.Name, Legal: true}

	switch {
	case cmd.Move != nil:
		mode := stats.Walking
		if cmd.Move.Mode != "" {
			if mode, err = stats.ParseSpeedMode(cmd.Move.Mode); err != nil {
				return ev, err
			}
		}
		res, err := r.turn.TryMove(mode, geom.Pt(cmd.Move.DX, cmd.Move.DY))
		if err != nil {
			return ev, err
		}
		ev.Legal, ev.Reason = res.IsLegal(), res.Reason().ID
		if ev.Legal {
			ev.Detail = fmt.Sprintf("%s to %s", mode, actor.Position())
		}

	case cmd.Attack != nil:
		a, ok := actor.Attack(cmd.Attack.Action)
		if !ok {
			return ev, fmt.Errorf("%s has no attack %q", actor.Name, cmd.Attack.Action)
		}
		res, err := r.turn.Attack(a, geom.Pt(cmd.Attack.DX, cmd.Attack.DY))
		if err != nil {
			return ev, err
		}
		ev.Legal, ev.Reason = res.IsLegal(), res.Reason().ID
		if out, ok := res.Value(); ok {
			ev.Detail = out.String()
		}

	case cmd.EndTurn:
		res, err := r.turn.EndTurn()
		if err != nil {
			return ev, err
		}
		ev.Legal, ev.Reason = res.IsLegal(), res.Reason().ID
		if next, ok := res.Value(); ok {
			r.turn = next
			if cb, err := next.Combatant(); err == nil {
				ev.Detail = "next: " + cb.Name
			}
		}

	case cmd.Heal != nil:
		healed := actor.Stats.Health.Heal(cmd.Heal.Amount)
		ev.Detail = fmt.Sprintf("healed %d to %d/%d", healed, actor.Stats.Health.HP(), actor.Stats.Health.MaxHP())

	case cmd.Condition != nil:
		if cmd.Condition.Apply != "" {
			cond, err := stats.ParseCondition(cmd.Condition.Apply)
			if err != nil {
				return ev, err
			}
			ev.Detail = cond.String() + " " + actor.Stats.ApplyCondition(cond, cause.Indefinite).String()
		} else {
			cond, err := stats.ParseCondition(cmd.Condition.Remove)
			if err != nil {
				return ev, err
			}
			if actor.Stats.RemoveCondition(cond) {
				ev.Detail = cond.String() + " removed"
			} else {
				ev.Detail = cond.String() + " not present"
			}
		}

	case cmd.DeathSave:
		out, roll := actor.Stats.Health.DeathSave(r.roller)
		ev.Detail = out.String()
		if roll != nil {
			ev.Detail += " (" + roll.String() + ")"
		}

	default:
		return ev, ErrBadCommand
	}
	return ev, nil
}

// Summary renders the report as one line per event followed by the final
// state of every combatant.
func (rep *Report) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (seed %d), round %d\n", rep.Script, rep.Seed, rep.Round)
	for _, ev := range rep.Events {
		sb.WriteString("  ")
		sb.WriteString(ev.String())
		sb.WriteByte('\n')
	}
	for _, st := range rep.Combatants {
		fmt.Fprintf(&sb, "  %s: %d/%d HP", st.Name, st.HP, st.MaxHP)
		if st.Dead {
			sb.WriteString(", dead")
		}
		if len(st.Conditions) > 0 {
			sb.WriteString(", " + strings.Join(st.Conditions, ", "))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
