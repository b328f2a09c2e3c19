package stubgen

import (
	"context"
	"fmt"

	"github.com/pymodel/langcore/internal/document"
	"github.com/pymodel/langcore/internal/pyanalysis"
	"github.com/pymodel/langcore/internal/pyast"
)

// Pass is one stage of the stub-generation pipeline: given the text
// produced by the previous stage (freshly reparsed into mod) plus the
// module's analyzed member model, it returns the next stage's text.
type Pass interface {
	Name() string
	Rewrite(ctx context.Context, text string, mod *pyast.Module, analysis *pyanalysis.Analysis) (string, error)
}

// Generator runs an ordered Pass pipeline over a module's source, reparsing
// between every stage since each pass only reasons about the text it was
// actually handed.
type Generator struct {
	parse  document.ParseFunc
	passes []Pass
}

// New builds a Generator with the given parse collaborator and pass order.
// Pass an empty slice to use DefaultPasses.
func New(parse document.ParseFunc, passes ...Pass) *Generator {
	if len(passes) == 0 {
		passes = DefaultPasses()
	}
	return &Generator{parse: parse, passes: passes}
}

// DefaultPasses is the canonical six-stage pipeline, in order.
func DefaultPasses() []Pass {
	return []Pass{
		CleanupImportWalker{},
		RemovePrivateMemberWalker{},
		ConvertDocCommentWalker{},
		CleanupEmptyStatement{},
		OrganizeMemberWalker{},
		TypeInfoWalker{},
	}
}

// Generate runs every pass over sourceText in order, returning the final
// .pyi text. analysis supplies the type information TypeInfoWalker
// annotates with; it may be nil, in which case that pass is a no-op.
func (g *Generator) Generate(ctx context.Context, sourceText string, analysis *pyanalysis.Analysis) (string, error) {
	text := sourceText
	for _, p := range g.passes {
		mod, diags := g.parse(ctx, text)
		if mod == nil {
			return "", fmt.Errorf("stubgen: pass %s: reparse failed: %v", p.Name(), diags)
		}
		next, err := p.Rewrite(ctx, text, mod, analysis)
		if err != nil {
			return "", fmt.Errorf("stubgen: pass %s: %w", p.Name(), err)
		}
		text = next
	}
	return text, nil
}
