// Command daoopt solves a discrete graphical model's MPE/MAP query by
// AND/OR branch-and-bound (or, with -ao-star, best-first AO* search) over a
// pseudo-tree, using mini-bucket elimination and/or FGLP reparameterization
// as the admissible heuristic.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/lotten/daoopt-go/engine"
)

func main() {
	app := cli.NewApp()
	app.Name = "daoopt"
	app.Usage = "MPE/MAP inference by AND/OR branch-and-bound and AO* search"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "evidence", Usage: "evidence file"},
		cli.StringFlag{Name: "ordering", Usage: "elimination ordering file (not read: the order is always computed by min-fill)"},
		cli.StringFlag{Name: "output", Usage: "solution output file (defaults to stdout)"},
		cli.StringFlag{Name: "subproblem", Usage: "restrict search to the subproblem file describes"},
		cli.StringFlag{Name: "init-bound", Usage: "seed the incumbent from an initial-bound file"},

		cli.IntFlag{Name: "ibound", Value: 10, Usage: "mini-bucket i-bound"},
		cli.BoolFlag{Name: "match", Usage: "enable moment-matching across mini-buckets"},

		cli.IntFlag{Name: "order-iterations", Value: 1, Usage: "ordering restarts (not read: a single min-fill order is computed)"},
		cli.IntFlag{Name: "order-tolerance", Value: 0, Usage: "min-fill tolerance for the ordering heuristic"},
		cli.IntFlag{Name: "width-limit", Usage: "reject orderings wider than this (0 = no limit)"},
		cli.DurationFlag{Name: "order-time", Usage: "time budget for ordering search (not read)"},

		cli.BoolFlag{Name: "or-chain", Usage: "collapse the pseudo-tree to a single OR-chain (path-width)"},
		cli.IntFlag{Name: "cache-bound", Usage: "max context size eligible for caching (0 = no limit)"},
		cli.BoolFlag{Name: "no-caching", Usage: "empty every cache context (values are still reused until a context variable is reassigned)"},

		cli.BoolFlag{Name: "fglp", Usage: "use FGLP reparameterization as the heuristic directly"},
		cli.BoolFlag{Name: "fglp-mbe", Usage: "run FGLP first, then build MBE on its reparameterized factors"},
		cli.BoolFlag{Name: "fglp-priority", Usage: "use the priority-residual FGLP schedule"},
		cli.IntFlag{Name: "fglp-iterations", Usage: "max FGLP message-passing iterations (0 = none)"},

		cli.BoolFlag{Name: "ao-star", Usage: "search with best-first AO* instead of branch-and-bound"},
		cli.BoolFlag{Name: "rotate", Usage: "rotate among open-node stacks (BnB keeps a single stack, so this has no effect)"},
		cli.IntFlag{Name: "rotate-limit", Value: 1000, Usage: "nodes expanded per stack before rotating"},
		cli.IntFlag{Name: "lds", Usage: "run limited discrepancy search up to this depth before BnB/AO*"},
		cli.DurationFlag{Name: "max-time", Usage: "wall-clock deadline for the whole solve (0 = none; AO* does not check it)"},

		cli.Float64Flag{Name: "perturb", Usage: "replace zero factor entries with this probability"},
		cli.BoolFlag{Name: "collapse", Usage: "merge factors sharing identical scopes before solving"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "daoopt:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one network file argument")
	}

	net, err := loadNetwork(c)
	if err != nil {
		return err
	}

	cfg := buildConfig(c)
	session := engine.NewSession(cfg)
	if err := session.Prepare(net); err != nil {
		return err
	}

	if path := c.String("init-bound"); path != "" {
		if err := seedInitialBound(session, path); err != nil {
			return err
		}
	}
	if path := c.String("subproblem"); path != "" {
		if err := restrictSubproblem(session, path); err != nil {
			return err
		}
	}

	sol, err := session.Solve()
	if err != nil {
		return err
	}

	out := os.Stdout
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	fmt.Fprintf(os.Stderr, "status: %s, value: %v\n", sol.Status, sol.Value)
	return engine.WriteSolution(out, sol.Assignment)
}

func loadNetwork(c *cli.Context) (*engine.Network, error) {
	netFile, err := os.Open(c.Args().First())
	if err != nil {
		return nil, fmt.Errorf("cannot open network file: %w", err)
	}
	defer netFile.Close()
	net, err := engine.ParseUAI(netFile)
	if err != nil {
		return nil, err
	}

	opt := engine.PreprocessOptions{
		Collapse: c.Bool("collapse"),
		Perturb:  c.Float64("perturb"),
		Evidence: map[engine.Var]engine.Val{},
	}
	if path := c.String("evidence"); path != "" {
		ef, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("cannot open evidence file: %w", err)
		}
		defer ef.Close()
		evid, err := engine.ParseEvidence(ef, net.Domains)
		if err != nil {
			return nil, err
		}
		opt.Evidence = evid
	}
	return engine.Preprocess(net, opt)
}

func buildConfig(c *cli.Context) engine.Config {
	cfg := engine.DefaultConfig()
	cfg.IBound = c.Int("ibound")
	cfg.Match = c.Bool("match")

	cfg.OrderIterations = c.Int("order-iterations")
	cfg.OrderTolerance = c.Int("order-tolerance")
	cfg.OrderTime = c.Duration("order-time")
	if w := c.Int("width-limit"); w > 0 {
		cfg.WidthLimit = w
	}

	cfg.OrChain = c.Bool("or-chain")
	cfg.NoCaching = c.Bool("no-caching")
	if b := c.Int("cache-bound"); b > 0 {
		cfg.CacheBound = b
	}

	variant := engine.FGLPPlain
	if c.Bool("fglp-priority") {
		variant = engine.FGLPPriority
	}
	fglpOpts := engine.FGLPOptions{
		Variant:       variant,
		MaxIterations: c.Int("fglp-iterations"),
	}
	cfg.FGLPRoot = fglpOpts
	cfg.FGLPHeur = c.Bool("fglp") && !c.Bool("fglp-mbe")
	cfg.FGLPMBEHeur = c.Bool("fglp-mbe")
	if cfg.FGLPMBEHeur {
		cfg.FGLPHeur = true
	}
	cfg.UsePriority = c.Bool("fglp-priority")

	cfg.AOStar = c.Bool("ao-star")
	cfg.Rotate = c.Bool("rotate")
	cfg.RotateLimit = c.Int("rotate-limit")
	cfg.LDSDepth = c.Int("lds")
	cfg.MaxTime = c.Duration("max-time")
	return cfg
}

func restrictSubproblem(session *engine.Session, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open subproblem file: %w", err)
	}
	defer f.Close()
	restr, err := engine.ParseSubproblemRestriction(f)
	if err != nil {
		return err
	}
	return session.RestrictTo(restr)
}

func seedInitialBound(session *engine.Session, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open initial bound file: %w", err)
	}
	defer f.Close()
	ib, err := engine.LoadInitialBound(f)
	if err != nil {
		return err
	}
	if ib.Assignment != nil {
		session.ReportIncumbent(ib.Value, ib.Assignment)
	}
	return nil
}
