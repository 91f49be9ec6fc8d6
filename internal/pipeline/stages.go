package pipeline

import (
	"fmt"
	"sort"

	"github.com/opmodel/tscompiler/internal/diag"
	"github.com/opmodel/tscompiler/internal/discovery"
	"github.com/opmodel/tscompiler/internal/exprast"
	"github.com/opmodel/tscompiler/internal/htmldoc"
	"github.com/opmodel/tscompiler/internal/lower"
	"github.com/opmodel/tscompiler/internal/overlay"
	"github.com/opmodel/tscompiler/internal/resolve"
	"github.com/opmodel/tscompiler/internal/scope"
	"github.com/opmodel/tscompiler/internal/span"
	"github.com/opmodel/tscompiler/internal/typecheck"
)

// stageVersion values bump whenever a stage's algorithm changes in a way
// that should invalidate every previously cached artifact, independent
// of the authored input. Bumping one of these is the only sanctioned
// way to force a full recache of that stage.
const (
	versionLower       = "1"
	versionResolve     = "1"
	versionBind        = "1"
	versionTypecheck   = "1"
	versionUsage       = "1"
	versionOverlayPlan = "1"
	versionOverlayEmit = "1"
	versionAOTPlan     = "1"
)

// UsageTable is the "usage" stage's artifact: per-resource, per-bindable
// reference counts across every linked instruction in the module — the
// raw material completions ranking and "unused bindable" diagnostics
// draw on. spec.md §4.1 names "usage" as a stage key without spelling
// out its algorithm further; this is the most direct thing a stage by
// that name can mean given what Host Resolution already records on
// each LinkedInstruction (its resolved TargetSem.Resource/Bindable).
type UsageTable struct {
	Counts map[discovery.ResourceKey]map[string]int
}

// AOTPlan is the "aot:plan" stage's artifact: one entry per Overlay
// Synthesis frame naming how many expression probes an ahead-of-time
// build would need to emit for it. Like "usage", spec.md §4.1 names
// this stage key without an elaborated algorithm; a full ahead-of-time
// code generator is out of scope here, so this stage produces the
// planning summary such a generator would consume as its first input,
// grounded directly on Overlay Synthesis's own Plan shape (which is
// module-wide, grouped by frame, not per-template) rather than
// inventing a parallel structure.
type AOTPlan struct {
	Frames []AOTFramePlan
}

type AOTFramePlan struct {
	FrameId   span.FrameId
	TypeName  string
	ExprCount int
}

// BuildDefaultRegistry registers every stage in the closed StageKey set
// against the real compiler packages (internal/lower, internal/
// resolve, internal/scope, internal/typecheck, internal/overlay),
// wiring each stage's Fingerprint to the authored inputs spec.md §4.1
// says it must be pure over (HTML text, options hints — never a dep's
// output, which is instead folded into the cache key via its own
// artifactHash).
func BuildDefaultRegistry() (*Registry, error) {
	r := NewRegistry()

	stages := []Stage{
		{
			Key: StageLower, Deps: nil, Version: versionLower,
			Fingerprint: func(rc *RunContext) string {
				return span.StableHash(struct{ HTML, File, Parser string }{rc.Opts.HTML, string(rc.Opts.File), hintOr(rc.Opts.ParserHint, "default")})
			},
			Run: func(rc *RunContext) (any, error) {
				doc, err := htmldoc.Parse(rc.Opts.HTML)
				if err != nil {
					return nil, fmt.Errorf("pipeline: lower: parse html: %w", err)
				}
				return lower.New(rc.Opts.File).Lower(doc), nil
			},
		},
		{
			Key: StageResolve, Deps: []StageKey{StageLower}, Version: versionResolve,
			Fingerprint: func(rc *RunContext) string {
				return span.StableHash(struct{ GraphHash string }{graphFingerprint(rc.Opts.Graph)})
			},
			Run: func(rc *RunContext) (any, error) {
				mod := rc.Dep(StageLower).(*lower.IrModule)
				linked, diags := resolve.New(rc.Opts.Graph).Resolve(mod)
				return ResolveOutput{Module: linked, Diags: diags}, nil
			},
		},
		{
			Key: StageBind, Deps: []StageKey{StageResolve}, Version: versionBind,
			Fingerprint: func(rc *RunContext) string {
				return span.StableHash(struct{ Root scope.TypeRef }{rc.Opts.RootVMType})
			},
			Run: func(rc *RunContext) (any, error) {
				linked := rc.Dep(StageResolve).(ResolveOutput).Module
				return scope.Bind(linked, rc.Opts.RootVMType), nil
			},
		},
		{
			Key: StageTypecheck, Deps: []StageKey{StageResolve, StageBind}, Version: versionTypecheck,
			Fingerprint: func(rc *RunContext) string { return "" },
			Run: func(rc *RunContext) (any, error) {
				linked := rc.Dep(StageResolve).(ResolveOutput).Module
				bound := rc.Dep(StageBind).(*scope.Result)
				table, diags := typecheck.Check(linked, bound.ByTemplate)
				return TypecheckOutput{Table: table, Diags: diags}, nil
			},
		},
		{
			Key: StageUsage, Deps: []StageKey{StageResolve}, Version: versionUsage,
			Fingerprint: func(rc *RunContext) string { return "" },
			Run: func(rc *RunContext) (any, error) {
				linked := rc.Dep(StageResolve).(ResolveOutput).Module
				return computeUsage(linked), nil
			},
		},
		{
			Key: StageOverlayPlan, Deps: []StageKey{StageResolve, StageBind}, Version: versionOverlayPlan,
			Fingerprint: func(rc *RunContext) string { return "" },
			Run: func(rc *RunContext) (any, error) {
				linked := rc.Dep(StageResolve).(ResolveOutput).Module
				bound := rc.Dep(StageBind).(*scope.Result)
				return overlay.BuildPlan(linked, bound.ByTemplate), nil
			},
		},
		{
			Key: StageOverlayEmit, Deps: []StageKey{StageResolve, StageOverlayPlan}, Version: versionOverlayEmit,
			Fingerprint: func(rc *RunContext) string { return "" },
			Run: func(rc *RunContext) (any, error) {
				linked := rc.Dep(StageResolve).(ResolveOutput).Module
				plan := rc.Dep(StageOverlayPlan).(*overlay.Plan)
				spans, asts := exprInfo(linked)
				return overlay.Emit(plan, spans, asts), nil
			},
		},
		{
			Key: StageAOTPlan, Deps: []StageKey{StageOverlayPlan}, Version: versionAOTPlan,
			Fingerprint: func(rc *RunContext) string { return "" },
			Run: func(rc *RunContext) (any, error) {
				plan := rc.Dep(StageOverlayPlan).(*overlay.Plan)
				return buildAOTPlan(plan), nil
			},
		},
	}

	for _, s := range stages {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// ResolveOutput bundles resolve's two return values into the single
// Output value a Stage must return; exported so callers outside this
// package (internal/workspace) can type-assert a resolve StageResult's
// Output without reflection.
type ResolveOutput struct {
	Module *resolve.LinkedModule
	Diags  []diag.RawDiagnostic
}

// TypecheckOutput mirrors ResolveOutput for the typecheck stage.
type TypecheckOutput struct {
	Table *typecheck.Table
	Diags []diag.RawDiagnostic
}

func hintOr(hint, fallback string) string {
	if hint == "" {
		return fallback
	}
	return hint
}

// graphFingerprint reduces a ResourceGraph to the stable digest that
// feeds Host Resolution's fingerprint — spec.md §4.1's "opaque inputs"
// rule applied to the semantics catalog, which is reused unchanged
// across many templates in one project and should only invalidate
// dependents when its actual resource set changes.
func graphFingerprint(g *discovery.ResourceGraph) string {
	if g == nil {
		return "nil"
	}
	keys := make([]string, 0, len(g.Resources))
	for k := range g.Resources {
		keys = append(keys, fmt.Sprintf("%d:%s", k.Kind, k.Name))
	}
	sort.Strings(keys)
	return span.StableHash(keys)
}

func exprInfo(linked *resolve.LinkedModule) (map[span.ExprId]span.TextSpan, map[span.ExprId]exprast.Node) {
	spans := map[span.ExprId]span.TextSpan{}
	asts := map[span.ExprId]exprast.Node{}
	for id, entry := range linked.ExprTable {
		spans[id] = entry.Span
		asts[id] = entry.Ast
	}
	return spans, asts
}

func computeUsage(linked *resolve.LinkedModule) *UsageTable {
	counts := map[discovery.ResourceKey]map[string]int{}
	for _, tpl := range linked.Templates {
		for _, row := range tpl.Rows {
			for _, instr := range row.Instructions {
				if instr.Sem.Resource == (discovery.ResourceKey{}) || instr.Sem.Bindable == "" {
					continue
				}
				byBindable, ok := counts[instr.Sem.Resource]
				if !ok {
					byBindable = map[string]int{}
					counts[instr.Sem.Resource] = byBindable
				}
				byBindable[instr.Sem.Bindable]++
			}
		}
	}
	return &UsageTable{Counts: counts}
}

func buildAOTPlan(plan *overlay.Plan) *AOTPlan {
	out := &AOTPlan{}
	for _, f := range plan.Frames {
		out.Frames = append(out.Frames, AOTFramePlan{FrameId: f.FrameId, TypeName: f.TypeName, ExprCount: len(f.Lambdas)})
	}
	return out
}
