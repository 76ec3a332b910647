package migration

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"tracker/backup"
)

// Step is one registered transform between two adjacent schema versions.
// Transforms must be defensive: check each file and column they touch and
// tolerate the data already being in the target shape, so a half-applied
// previous run does not break a retry.
type Step struct {
	From        string
	To          string
	Description string
	Apply       func(*Context) error
}

// Chain is the ordered migration chain. Only single-hop transitions are
// registered; upgrading across several versions walks each registered hop in
// turn.
type Chain struct {
	dataDir string
	target  string
	steps   map[string]Step // keyed by From version
	backups *backup.Manager
	log     *zap.Logger
}

// NewChain validates and assembles a chain toward target. Every version
// string must parse as semver, and no two steps may share a From version.
func NewChain(dataDir, target string, steps []Step, backups *backup.Manager, log *zap.Logger) (*Chain, error) {
	if _, err := semver.NewVersion(target); err != nil {
		return nil, fmt.Errorf("target version %q: %w", target, err)
	}
	byFrom := make(map[string]Step, len(steps))
	for _, s := range steps {
		if _, err := semver.NewVersion(s.From); err != nil {
			return nil, fmt.Errorf("step from-version %q: %w", s.From, err)
		}
		if _, err := semver.NewVersion(s.To); err != nil {
			return nil, fmt.Errorf("step to-version %q: %w", s.To, err)
		}
		if _, dup := byFrom[s.From]; dup {
			return nil, fmt.Errorf("duplicate migration step from version %s", s.From)
		}
		byFrom[s.From] = s
	}

	// Every walk must terminate: a step chain that revisits a version would
	// loop forever in Run
	for _, s := range steps {
		seen := map[string]bool{s.From: true}
		for cur := s.To; cur != target; {
			if seen[cur] {
				return nil, fmt.Errorf("migration step cycle through version %s", cur)
			}
			seen[cur] = true
			next, ok := byFrom[cur]
			if !ok {
				break
			}
			cur = next.To
		}
	}
	return &Chain{
		dataDir: dataDir,
		target:  target,
		steps:   byFrom,
		backups: backups,
		log:     log,
	}, nil
}

// Target returns the version the chain migrates toward
func (c *Chain) Target() string {
	return c.target
}

// Run brings the on-disk schema up to the target version. A full backup is
// taken before any transform runs. A failed step leaves the marker
// unadvanced so the next startup retries the same migration. An unrecognized
// version with no registered step is surfaced as a warning, not a failure:
// the system stays usable in a degraded, unmigrated state.
func (c *Chain) Run() error {
	current := readMarker(c.dataDir, c.log)
	targetV := semver.MustParse(c.target)

	if cur, err := semver.NewVersion(current); err == nil && cur.Equal(targetV) {
		c.log.Info("schema up to date", zap.String("version", current))
		return nil
	}

	// Fresh install: nothing on disk predates the current schema, so stamp
	// the marker without transforming
	if current == SentinelVersion {
		if _, ok := c.steps[current]; !ok {
			c.log.Info("fresh install, stamping schema version", zap.String("version", c.target))
			return writeMarker(c.dataDir, c.target)
		}
	}

	path, err := c.backups.Create()
	if err != nil {
		return fmt.Errorf("pre-migration backup: %w", err)
	}
	c.log.Info("pre-migration backup", zap.String("path", path))

	ctx := &Context{dataDir: c.dataDir, log: c.log}
	for current != c.target {
		step, ok := c.steps[current]
		if !ok {
			c.log.Warn("no migration path, proceeding unmigrated",
				zap.String("current", current),
				zap.String("target", c.target))
			return nil
		}

		c.log.Info("applying migration",
			zap.String("from", step.From),
			zap.String("to", step.To),
			zap.String("description", step.Description))
		if err := step.Apply(ctx); err != nil {
			// Marker stays at step.From; the next startup retries
			return fmt.Errorf("migration %s -> %s: %w", step.From, step.To, err)
		}
		if err := writeMarker(c.dataDir, step.To); err != nil {
			return fmt.Errorf("advance version marker: %w", err)
		}
		current = step.To
	}

	c.log.Info("schema migrated", zap.String("version", c.target))
	return nil
}
