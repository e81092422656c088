package words

import (
	"context"
	"errors"
	"slices"

	"github.com/scythe504/leaguedraw/internal"
)

var (
	ErrUnknownCategory = errors.New("unknown word category")
	ErrWordNotFound    = errors.New("word not found")
)

const (
	CategoryChampions = "champions"
	CategoryItems     = "items"
	CategorySpells    = "spells"
	CategorySkins     = "skins"
)

// Bank resolves word references. Lookup returns the raw row; callers apply
// FormatSubtext themselves.
type Bank interface {
	Lookup(ctx context.Context, choice internal.WordChoice) (internal.WordData, error)
	Pool(ctx context.Context, categories []string) ([]internal.WordChoice, error)
}

var subtextRules = map[string]func(w internal.WordData) string{
	CategoryChampions: func(internal.WordData) string { return "" },
	CategoryItems:     func(internal.WordData) string { return "" },
	CategorySpells:    func(w internal.WordData) string { return w.Parent + " " + w.Key },
	CategorySkins:     func(w internal.WordData) string { return w.Parent + " skin" },
}

// Categories lists every category the store knows, sorted.
func Categories() []string {
	out := make([]string, 0, len(subtextRules))
	for c := range subtextRules {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

func IsCategory(category string) bool {
	_, ok := subtextRules[category]
	return ok
}

// FormatSubtext stamps the category onto w and fills Subtext by the
// category's rule. Unknown categories keep whatever subtext they had.
func FormatSubtext(w internal.WordData, category string) internal.WordData {
	w.Category = category
	if rule, ok := subtextRules[category]; ok {
		w.Subtext = rule(w)
	}
	return w
}
