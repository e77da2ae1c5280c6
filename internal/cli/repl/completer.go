package repl

import (
	"sort"
	"strings"
)

// Completer resolves user input to menu items.
type Completer struct {
	items []Item
	words map[string]int
}

// NewCompleter indexes the keys and words of items.
func NewCompleter(items []Item) *Completer {
	c := &Completer{items: items, words: make(map[string]int)}
	for i, it := range items {
		c.words[strings.ToLower(it.Key)] = i
		for _, w := range it.Words {
			c.words[strings.ToLower(w)] = i
		}
	}
	return c
}

// Resolve returns the item for input: an exact key or word, or a prefix
// shared by the words of exactly one item.
func (c *Completer) Resolve(input string) (Item, bool) {
	input = strings.ToLower(strings.TrimSpace(input))
	if i, ok := c.words[input]; ok {
		return c.items[i], true
	}

	found := -1
	for w, i := range c.words {
		if !strings.HasPrefix(w, input) {
			continue
		}
		if found >= 0 && found != i {
			return Item{}, false
		}
		found = i
	}
	if found < 0 {
		return Item{}, false
	}
	return c.items[found], true
}

// Complete returns the words starting with prefix, sorted.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var suggestions []string
	for w := range c.words {
		if strings.HasPrefix(w, prefix) {
			suggestions = append(suggestions, w)
		}
	}
	sort.Strings(suggestions)
	return suggestions
}
