package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SemanticsCatalogPaths = []string{"src/components"}

	assert.NoError(t, Validate(cfg))
}

func TestValidate_EmptyCacheDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheDir = "  "

	err := Validate(cfg)
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "cacheDir", verrs[0].Field)
}

func TestValidate_UnknownSurface(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultSurfaces = []string{"carrier-pigeon"}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defaultSurfaces")
}

func TestValidate_UnknownRenameTarget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RefactorPolicy.RenameAllowedTargets = []string{"everything"}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "renameAllowedTargets")
}

func TestValidate_EmptyCatalogPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SemanticsCatalogPaths = []string{""}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "semanticsCatalogPaths")
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{{Field: "cacheDir", Message: "must not be empty"}}
	assert.Contains(t, errs.Error(), "cacheDir")
	assert.Contains(t, errs.Error(), "must not be empty")
}

func TestValidationErrors_Empty(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "no validation errors", errs.Error())
}
