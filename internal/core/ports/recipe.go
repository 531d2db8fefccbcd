package ports

import "github.com/debstrap/debstrap/internal/core/domain"

// RecipeLoader reads the bootstrap recipe.
type RecipeLoader interface {
	// Load reads the recipe file at path.
	Load(path string) (*domain.Recipe, error)
}
