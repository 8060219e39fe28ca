// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parser produces candidate descriptions for a raw citation. Each
// Parser is one upstream source (the reference string itself, OpenAlex,
// Crossref); Run fans a citation out to an ordered list of them and
// collects one candidate slot per parser for fusion.
package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// ErrNoMatch is returned when a parser finds nothing for a citation.
var ErrNoMatch = errors.New("no match")

// Parser produces one candidate description for a citation.
type Parser interface {
	// Name returns the parser identifier (e.g. "crossref").
	Name() string

	// Parse returns the parser's description of c.
	Parse(ctx context.Context, c types.Citation) (*types.Description, error)
}

// DefaultParsers is the parser list used when the configuration names none.
var DefaultParsers = []types.ParserName{
	types.ParserReference,
	types.ParserOpenAlex,
	types.ParserCrossref,
}

const (
	defaultRequestsPerSecond = 5
	defaultTimeout           = 30 * time.Second
	defaultUserAgent         = "citation-engine/0.1"
)

// Build constructs parsers for names in order. Lookup parsers share client
// and each gets its own rate limiter.
func Build(names []types.ParserName, cfg types.LookupConfig, client *http.Client) ([]Parser, error) {
	if len(names) == 0 {
		names = DefaultParsers
	}
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	seen := make(map[types.ParserName]bool, len(names))
	parsers := make([]Parser, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		switch name {
		case types.ParserReference:
			parsers = append(parsers, ReferenceParser{})
		case types.ParserOpenAlex:
			parsers = append(parsers, &OpenAlexParser{
				Client:     client,
				Config:     cfg,
				Limiter:    newLimiter(cfg.RequestsPerSecond),
				MaxRetries: cfg.MaxRetries,
			})
		case types.ParserCrossref:
			parsers = append(parsers, &CrossrefParser{
				Client:     client,
				Config:     cfg,
				Limiter:    newLimiter(cfg.RequestsPerSecond),
				MaxRetries: cfg.MaxRetries,
			})
		default:
			return nil, fmt.Errorf("unknown parser %q", name)
		}
	}
	return parsers, nil
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// Result holds the candidate sequence produced for one citation.
type Result struct {
	// Candidates has one slot per parser, in parser order. A parser that
	// failed or matched nothing leaves its slot nil.
	Candidates []*types.Description

	// Sources names the parsers whose slot is non-nil.
	Sources []string

	// Errors maps parser name to the error it returned. ErrNoMatch is
	// recorded here too.
	Errors map[string]error
}

// Live returns the number of non-nil candidates.
func (r Result) Live() int {
	n := 0
	for _, d := range r.Candidates {
		if d != nil {
			n++
		}
	}
	return n
}

// Run calls every parser concurrently and waits for all of them. Parser
// failures never fail the run; they are logged and recorded in
// Result.Errors. Run only returns an error when ctx is cancelled.
func Run(ctx context.Context, parsers []Parser, c types.Citation, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	candidates := make([]*types.Description, len(parsers))
	errs := make([]error, len(parsers))

	var g errgroup.Group
	for i, p := range parsers {
		g.Go(func() error {
			d, err := p.Parse(ctx, c)
			if err != nil {
				errs[i] = err
				return nil
			}
			candidates[i] = d
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{Candidates: candidates, Errors: make(map[string]error)}
	for i, p := range parsers {
		switch {
		case errs[i] != nil:
			res.Errors[p.Name()] = errs[i]
			if errors.Is(errs[i], ErrNoMatch) {
				logger.Debug("parser found no match", "parser", p.Name(), "key", c.Key)
			} else {
				logger.Warn("parser failed", "parser", p.Name(), "key", c.Key, "error", errs[i])
			}
		case candidates[i] != nil:
			res.Sources = append(res.Sources, p.Name())
		}
	}
	return res, nil
}
