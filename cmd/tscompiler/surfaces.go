package main

import (
	"github.com/opmodel/tscompiler/internal/diag"
	"github.com/opmodel/tscompiler/internal/workspace"
)

// surfacesFromConfig converts the resolved project config's
// DefaultSurfaces string list into diag.Surface values.
func surfacesFromConfig() []diag.Surface {
	surfaces := make([]diag.Surface, 0, len(resolved.Config.DefaultSurfaces))
	for _, s := range resolved.Config.DefaultSurfaces {
		surfaces = append(surfaces, diag.Surface(s))
	}
	return surfaces
}

// refactorPolicyFromConfig converts the resolved project config's
// string-typed refactor policy into workspace's enum-typed RefactorPolicy.
func refactorPolicyFromConfig() workspace.RefactorPolicy {
	rp := resolved.Config.RefactorPolicy

	targets := make([]workspace.RefactorTarget, 0, len(rp.RenameAllowedTargets))
	for _, t := range rp.RenameAllowedTargets {
		targets = append(targets, workspace.RefactorTarget(t))
	}
	decisions := make([]workspace.RefactorDecisionPoint, 0, len(rp.RequiredDecisions))
	for _, d := range rp.RequiredDecisions {
		decisions = append(decisions, workspace.RefactorDecisionPoint(d))
	}

	return workspace.RefactorPolicy{
		RenameAllowedTargets:    targets,
		RequiredDecisions:       decisions,
		AllowTypeScriptFallback: rp.AllowTypeScriptFallback,
	}
}
