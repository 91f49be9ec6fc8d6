// Package workspace implements the Workspace Facade (C13): the single
// entry point editor tooling (hover, completion, definition, references,
// rename, code actions) talks to. It owns the document store and the
// provenance index, and answers spec.md §4.10's getCompilation contract:
// snapshot → fingerprint-keyed cache lookup → on miss, run the Pipeline
// Engine and feed the resulting overlay mapping into provenance.
//
// Grounded on other_examples' upbound-up `internal/xpls/workspace.go` (an
// actual LSP workspace: document lifecycle, diagnostics publishing,
// validation jobs) for the shape of "one facade struct owning a document
// store plus a derived index, recomputed lazily per request" — generalized
// here from Crossplane package validation to template compilation.
package workspace

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/opmodel/tscompiler/internal/diag"
	"github.com/opmodel/tscompiler/internal/discovery"
	"github.com/opmodel/tscompiler/internal/lower"
	"github.com/opmodel/tscompiler/internal/output"
	"github.com/opmodel/tscompiler/internal/overlay"
	"github.com/opmodel/tscompiler/internal/pipeline"
	"github.com/opmodel/tscompiler/internal/provenance"
	"github.com/opmodel/tscompiler/internal/resolve"
	"github.com/opmodel/tscompiler/internal/scope"
	"github.com/opmodel/tscompiler/internal/source"
	"github.com/opmodel/tscompiler/internal/span"
	"github.com/opmodel/tscompiler/internal/typecheck"
)

// Options binds everything a Workspace's options fingerprint covers
// (spec.md §4.10): the VM reflection token's hint, whether the host
// language is JS (no type annotations to check), the semantics catalog,
// parser hints, overlay emission knobs, the refactor policy, and a style
// profile hint (import style, quote style, ... — consulted by code
// actions). Changing any of these fields invalidates every cached
// compilation on next GetCompilation, even for unchanged source text.
type Options struct {
	Graph      *discovery.ResourceGraph
	RootVMType scope.TypeRef
	IsJS       bool

	ParserHint       string
	VMTokenHint      string
	OverlayKnobHint  string
	StyleProfileHint string

	Cache          pipeline.PersistentCache
	RefactorPolicy RefactorPolicy
	Surfaces       []diag.Surface
	DiagPolicy     diag.Policy
}

// Workspace is the C13 facade: one document store, one provenance index,
// one compiled-artifact cache, shared across every query a caller issues.
type Workspace struct {
	mu sync.Mutex

	store    *source.Store
	registry *pipeline.Registry
	prov     *provenance.Index
	catalog  *diag.Catalog
	diagPipe *diag.Pipeline

	opts     Options
	compiled map[compileKey]*Compilation
}

// compileKey is spec.md §4.10's cache key: "(uri, optionsFingerprint,
// contentHash)".
type compileKey struct {
	URI                string
	OptionsFingerprint string
	ContentHash        string
}

// New builds a Workspace wired to the default stage registry (every
// compiler stage C4–C8 via internal/pipeline.BuildDefaultRegistry) and
// the given Options.
func New(opts Options) (*Workspace, error) {
	reg, err := pipeline.BuildDefaultRegistry()
	if err != nil {
		return nil, fmt.Errorf("workspace: build registry: %w", err)
	}
	catalog := diag.NewCatalog()
	return &Workspace{
		store:    source.NewStore(),
		registry: reg,
		prov:     provenance.NewIndex(),
		catalog:  catalog,
		diagPipe: diag.NewPipeline(catalog, opts.DiagPolicy),
		opts:     opts,
		compiled: map[compileKey]*Compilation{},
	}, nil
}

// Open registers a document with the workspace's source store.
func (w *Workspace) Open(file span.SourceFileId, text string) *source.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.Open(file, text)
}

// Update replaces a document's content, evicting both its provenance
// edges and every cached Compilation keyed to its previous content hash
// — a stale compilation would otherwise keep answering queries against
// text the caller has already moved past.
func (w *Workspace) Update(file span.SourceFileId, text string) *source.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := w.store.Update(file, text)
	w.evictDocument(file)
	return snap
}

// RemoveDocument closes a document and purges every trace of it: its
// content snapshot, its provenance edges (on either endpoint), and any
// cached compilation.
func (w *Workspace) RemoveDocument(file span.SourceFileId) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.store.Remove(file)
	w.evictDocument(file)
}

func (w *Workspace) evictDocument(file span.SourceFileId) {
	w.prov.RemoveDocument(string(file))
	w.prov.RemoveDocument(overlayURI(file))
	for k := range w.compiled {
		if k.URI == string(file) {
			delete(w.compiled, k)
		}
	}
}

func overlayURI(file span.SourceFileId) string {
	return string(file) + ".__au.ttc.overlay.ts"
}

// optionsFingerprint folds every field spec.md §4.10 names into one
// stable digest.
func (w *Workspace) optionsFingerprint() string {
	return span.StableHash(struct {
		VMToken, Parser, Overlay, Style string
		IsJS                            bool
		Semantics                       string
		RefactorPolicy                  string
	}{
		VMToken:        w.opts.VMTokenHint,
		Parser:         w.opts.ParserHint,
		Overlay:        w.opts.OverlayKnobHint,
		Style:          w.opts.StyleProfileHint,
		IsJS:           w.opts.IsJS,
		Semantics:      graphFingerprint(w.opts.Graph),
		RefactorPolicy: span.StableHash(w.opts.RefactorPolicy),
	})
}

// graphFingerprint reduces the resource catalog to a sorted-key digest,
// mirroring internal/pipeline's own graphFingerprint (grouped
// independently here since that one is unexported — the two stay
// trivially consistent because both sort the same key shape).
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

// Compilation is one fully-compiled template: every artifact a query
// operation might need, frozen at the content+options fingerprint that
// produced it.
type Compilation struct {
	URI        span.SourceFileId
	OverlayURI string

	Module   *lower.IrModule
	Linked   *resolve.LinkedModule
	Scopes   map[span.TemplateId]*scope.ScopeTemplate
	Types    *typecheck.Table
	Usage    *pipeline.UsageTable
	Emission *overlay.Emission

	RawDiagnostics []diag.RawDiagnostic
}

// GetCompilation implements spec.md §4.10's algorithm: snapshot the
// document, compute its cache key, return a memoized Compilation on a
// hit, otherwise run the pipeline through overlay emission, feed the
// resulting mapping into the provenance index, and cache the result.
func (w *Workspace) GetCompilation(ctx context.Context, file span.SourceFileId) (*Compilation, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	tplLog := output.TemplateLogger(string(file))

	snap, ok := w.store.Snapshot(file)
	if !ok {
		return nil, fmt.Errorf("workspace: %s is not open", file)
	}

	key := compileKey{URI: string(file), OptionsFingerprint: w.optionsFingerprint(), ContentHash: snap.ContentHash}
	if c, ok := w.compiled[key]; ok {
		tplLog.Debug("compilation cache hit")
		return c, nil
	}
	tplLog.Debug("compiling")

	popts := pipeline.PipelineOptions{
		HTML:        snap.Text,
		File:        file,
		Graph:       w.opts.Graph,
		RootVMType:  w.opts.RootVMType,
		ParserHint:  w.opts.ParserHint,
		VMTokenHint: w.opts.VMTokenHint,
		Cache:       w.opts.Cache,
	}
	sess := pipeline.NewSession(w.registry, popts)

	lowerRes, err := sess.Run(ctx, pipeline.StageLower)
	if err != nil {
		return nil, err
	}
	mod := lowerRes.Output.(*lower.IrModule)

	resolveRes, err := sess.Run(ctx, pipeline.StageResolve)
	if err != nil {
		return nil, err
	}
	resolveOut := resolveRes.Output.(pipeline.ResolveOutput)

	bindRes, err := sess.Run(ctx, pipeline.StageBind)
	if err != nil {
		return nil, err
	}
	bound := bindRes.Output.(*scope.Result)

	typecheckRes, err := sess.Run(ctx, pipeline.StageTypecheck)
	if err != nil {
		return nil, err
	}
	typecheckOut := typecheckRes.Output.(pipeline.TypecheckOutput)

	usageRes, err := sess.Run(ctx, pipeline.StageUsage)
	if err != nil {
		return nil, err
	}
	usage := usageRes.Output.(*pipeline.UsageTable)

	emitRes, err := sess.Run(ctx, pipeline.StageOverlayEmit)
	if err != nil {
		return nil, err
	}
	emission := emitRes.Output.(*overlay.Emission)

	overURI := overlayURI(file)
	edges := provenance.FromOverlay(string(file), overURI, emission)
	w.prov.AddEdges(edges...)

	var rawDiags []diag.RawDiagnostic
	rawDiags = append(rawDiags, mod.Diags...)
	rawDiags = append(rawDiags, resolveOut.Diags...)
	rawDiags = append(rawDiags, typecheckOut.Diags...)

	c := &Compilation{
		URI:            file,
		OverlayURI:     overURI,
		Module:         mod,
		Linked:         resolveOut.Module,
		Scopes:         bound.ByTemplate,
		Types:          typecheckOut.Table,
		Usage:          usage,
		Emission:       emission,
		RawDiagnostics: rawDiags,
	}
	w.compiled[key] = c
	return c, nil
}

// Diagnostics runs a Compilation's raw diagnostics through the
// Diagnostics Engine (C10) and groups the result by surface, the
// WorkspaceDiagnostics shape spec.md §7 names.
func (w *Workspace) Diagnostics(ctx context.Context, file span.SourceFileId) (WorkspaceDiagnostics, error) {
	c, err := w.GetCompilation(ctx, file)
	if err != nil {
		return WorkspaceDiagnostics{}, err
	}
	w.mu.Lock()
	routed := w.diagPipe.Run(c.RawDiagnostics, w.opts.Surfaces)
	w.mu.Unlock()

	out := WorkspaceDiagnostics{BySurface: map[diag.Surface][]diag.Routed{}}
	for _, r := range routed {
		for _, s := range r.Surfaces {
			out.BySurface[s] = append(out.BySurface[s], r)
		}
	}
	return out, nil
}

// WorkspaceDiagnostics is spec.md §7's "returns WorkspaceDiagnostics{bySurface:
// Map<Surface, Diagnostic[]>}".
type WorkspaceDiagnostics struct {
	BySurface map[diag.Surface][]diag.Routed
}
