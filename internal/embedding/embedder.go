package embedding

import "context"

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Fitter is implemented by embedders that must learn from the corpus before
// they can embed. Fit returns a new fitted embedder and leaves the receiver
// untouched, so handles built earlier keep their own vocabulary.
type Fitter interface {
	Fit(corpus []string) (Embedder, error)
}
