package question

// Deck exposes question retrieval for HTTP handlers and the game service.
type Deck interface {
	List() []Question
	ByCategory(c Category) []Question
	FindByID(id string) (Question, bool)
}

// MemoryDeck implements Deck with an in-memory slice, suitable for MVP.
type MemoryDeck struct {
	items []Question
}

// NewMemoryDeck returns a MemoryDeck preloaded with the supplied questions.
func NewMemoryDeck(items []Question) *MemoryDeck {
	return &MemoryDeck{items: append([]Question(nil), items...)}
}

// List returns the full deck.
func (d *MemoryDeck) List() []Question {
	return append([]Question(nil), d.items...)
}

// ByCategory returns the cards belonging to the given category.
func (d *MemoryDeck) ByCategory(c Category) []Question {
	out := make([]Question, 0, len(d.items))
	for _, item := range d.items {
		if item.Category == c {
			out = append(out, item)
		}
	}
	return out
}

// FindByID looks up a question by identifier.
func (d *MemoryDeck) FindByID(id string) (Question, bool) {
	for _, item := range d.items {
		if item.ID == id {
			return item, true
		}
	}
	return Question{}, false
}

// Seed provides the default conversation deck required by the product spec.
func Seed() []Question {
	return []Question{
		{ID: "values-compass", Category: CategoryValues, Text: "What is one belief you hold that you would never compromise on, even for each other?"},
		{ID: "values-money", Category: CategoryValues, Text: "What did money mean in the home you grew up in, and what do you want it to mean in yours?"},
		{ID: "memories-first", Category: CategoryMemories, Text: "Describe the moment you first thought this relationship could be something real."},
		{ID: "memories-laugh", Category: CategoryMemories, Text: "What is the hardest you two have ever laughed together, and what started it?"},
		{ID: "future-morning", Category: CategoryFuture, Text: "Walk me through an ordinary morning ten years from now, the way you hope it looks."},
		{ID: "future-fear", Category: CategoryFuture, Text: "What is one future possibility for the two of you that quietly scares you?"},
		{ID: "daily-recharge", Category: CategoryDailyLife, Text: "After a draining day, what do you actually need from your partner, in plain words?"},
		{ID: "daily-chores", Category: CategoryDailyLife, Text: "Which small everyday task feels like love when your partner does it unasked?"},
		{ID: "growth-changed", Category: CategoryGrowth, Text: "How has being with your partner changed a habit or belief you once thought was fixed?"},
		{ID: "growth-apology", Category: CategoryGrowth, Text: "Tell your partner about a time you wish you had apologized sooner."},
		{ID: "intimacy-seen", Category: CategoryIntimacy, Text: "When do you feel most truly seen by your partner?"},
		{ID: "intimacy-distance", Category: CategoryIntimacy, Text: "What makes you pull away, and what helps you come back?"},
	}
}
