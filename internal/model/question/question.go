package question

// Category groups conversation cards by theme. Categories are closed: the
// prompt layer keeps guidance text per category and validates coverage at
// startup.
type Category string

const (
	CategoryValues    Category = "values"
	CategoryMemories  Category = "memories"
	CategoryFuture    Category = "future"
	CategoryDailyLife Category = "daily-life"
	CategoryGrowth    Category = "growth"
	CategoryIntimacy  Category = "intimacy"
)

// Categories lists every known category in presentation order.
func Categories() []Category {
	return []Category{
		CategoryValues,
		CategoryMemories,
		CategoryFuture,
		CategoryDailyLife,
		CategoryGrowth,
		CategoryIntimacy,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// DisplayName returns the human-readable label used inside prompts.
func (c Category) DisplayName() string {
	switch c {
	case CategoryValues:
		return "Values & Beliefs"
	case CategoryMemories:
		return "Shared Memories"
	case CategoryFuture:
		return "Future & Dreams"
	case CategoryDailyLife:
		return "Daily Life"
	case CategoryGrowth:
		return "Growth & Change"
	case CategoryIntimacy:
		return "Closeness & Intimacy"
	default:
		return string(c)
	}
}

// Question is one conversation card prompt shown to both players.
type Question struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Category Category `json:"category"`
}
