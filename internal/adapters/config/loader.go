// Package config provides the recipe loader for debstrap.
package config

import (
	"os"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"github.com/debstrap/debstrap/internal/core/domain"
	"github.com/debstrap/debstrap/internal/core/ports"
)

var _ ports.RecipeLoader = (*FileRecipeLoader)(nil)

// FileRecipeLoader implements ports.RecipeLoader using a YAML file.
type FileRecipeLoader struct{}

// NewLoader creates a new FileRecipeLoader.
func NewLoader() *FileRecipeLoader {
	return &FileRecipeLoader{}
}

// recipeFile is the on-disk structure of the recipe file.
type recipeFile struct {
	StubPackages []string `yaml:"stub-packages"`
	BasePackages []string `yaml:"base-packages"`
}

// Load reads a recipe file from the given path.
func (l *FileRecipeLoader) Load(path string) (*domain.Recipe, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read recipe file")
	}

	var recipe recipeFile
	if err := yaml.Unmarshal(data, &recipe); err != nil {
		return nil, zerr.Wrap(err, "failed to parse recipe file")
	}

	if len(recipe.StubPackages) == 0 {
		return nil, zerr.New("recipe names no stub packages")
	}
	if len(recipe.BasePackages) == 0 {
		return nil, zerr.New("recipe names no base packages")
	}

	return &domain.Recipe{
		StubPackages: recipe.StubPackages,
		BasePackages: recipe.BasePackages,
	}, nil
}
