package srcmodel

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"strategy-lab/internal/domain"
)

// GoSource is the SourceModel for strategies generated as Go source files.
type GoSource struct {
	// receivers are variable names recognized as the data-access object.
	receivers map[string]struct{}
	// fetchMethods record their first literal argument as a plain factor.
	fetchMethods map[string]struct{}
	// indicatorMethods record their first literal argument with the
	// indicator prefix.
	indicatorMethods map[string]struct{}
}

// NewGoSource creates a GoSource with the accessor names used by the strategy
// generator templates.
func NewGoSource() *GoSource {
	return &GoSource{
		receivers:        set("data", "frame"),
		fetchMethods:     set("Get", "Series"),
		indicatorMethods: set("Indicator"),
	}
}

// Compile-time interface check.
var _ SourceModel = (*GoSource)(nil)

func set(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// ExtractFactors walks every call expression and records the first literal
// string argument of recognized data-fetch calls. Non-literal arguments cannot
// be attributed to a canonical factor and are ignored.
func (g *GoSource) ExtractFactors(sourceText string) (domain.FactorSet, error) {
	factors := domain.NewFactorSet()
	if strings.TrimSpace(sourceText) == "" {
		// Missing source is not an error: the caller must be able to
		// continue analyzing the rest of the population.
		return factors, nil
	}

	file, _, err := g.parse(sourceText)
	if err != nil {
		return nil, err
	}

	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		recv, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		if _, ok := g.receivers[recv.Name]; !ok {
			return true
		}

		_, isFetch := g.fetchMethods[sel.Sel.Name]
		_, isIndicator := g.indicatorMethods[sel.Sel.Name]
		if !isFetch && !isIndicator {
			return true
		}

		name, ok := firstStringLiteral(call.Args)
		if !ok {
			return true
		}
		if isIndicator {
			name = domain.IndicatorPrefix + name
		}
		factors.Add(name)
		return true
	})

	return factors, nil
}

// Normalize renames every bound variable and formal parameter to VAR_<n>,
// assigning n in strictly increasing order of first appearance, then
// serializes the rewritten tree back to source text. A name reused later gets
// the placeholder it was first assigned.
func (g *GoSource) Normalize(sourceText string) (string, error) {
	file, fset, err := g.parse(sourceText)
	if err != nil {
		return "", err
	}

	placeholders := make(map[string]string)
	next := 0
	ast.Inspect(file, func(n ast.Node) bool {
		ident, ok := n.(*ast.Ident)
		if !ok || ident.Obj == nil || ident.Obj.Kind != ast.Var {
			return true
		}
		ph, seen := placeholders[ident.Name]
		if !seen {
			ph = fmt.Sprintf("VAR_%d", next)
			next++
			placeholders[ident.Name] = ph
		}
		ident.Name = ph
		return true
	})

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return "", fmt.Errorf("serialize normalized source: %w", err)
	}
	return buf.String(), nil
}

// parse parses source with object resolution so identifier uses share their
// declaration. Comments are discarded: they carry no structure.
func (g *GoSource) parse(sourceText string) (*ast.File, *token.FileSet, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "strategy.go", sourceText, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return file, fset, nil
}

func firstStringLiteral(args []ast.Expr) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	lit, ok := args[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	name, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false
	}
	return name, true
}
