package operation

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/rplc/pkg/text"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// compile builds a replacer per operation. Construction has no side
// effects, so operations compile concurrently; the reported error is the one
// for the lowest operation index.
func compile(ctx context.Context, ops []Operation) ([]*text.Replacer, error) {
	logger := zerolog.Ctx(ctx)

	replacers := make([]*text.Replacer, len(ops))
	errs := make([]error, len(ops))

	var g errgroup.Group
	for i, op := range ops {
		g.Go(func() error {
			rep, err := op.Replacer()
			if err != nil {
				errs[i] = errors.Errorf("operation %d (find %q): %w", i+1, op.Find, err)
				return errs[i]
			}
			replacers[i] = rep
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, e := range errs {
			if e != nil {
				return nil, e
			}
		}
		return nil, err
	}

	for i, op := range ops {
		if refs := text.CaptureReferences(op.With); len(refs) > 0 {
			logger.Warn().
				Int("op", i+1).
				Strs("references", refs).
				Msg("replacement contains capture references; they are inserted literally")
		}
		logger.Debug().
			Int("op", i+1).
			Str("matcher", replacers[i].Matcher().Kind().String()).
			Msg("compiled operation")
	}

	return replacers, nil
}
