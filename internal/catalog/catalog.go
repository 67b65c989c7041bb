package catalog

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"rural-health-assistant/internal/storage"
)

// Kind names one of the two shared reference catalogs.
type Kind string

const (
	KindHerbal  Kind = "herbal"
	KindGeneric Kind = "generic"
)

func (k Kind) Valid() bool {
	return k == KindHerbal || k == KindGeneric
}

func (k Kind) fileName() string {
	if k == KindHerbal {
		return "plantas_medicinales.json"
	}
	return "medicamentos_genericos.json"
}

// Entry is one remedy record. Herbal entries use ScientificName,
// Preparation and Region; generic-medicine entries use Dosage, SideEffects
// and Availability.
type Entry struct {
	Name              string   `json:"name"`
	ScientificName    string   `json:"scientific_name,omitempty"`
	Uses              []string `json:"uses"`
	Preparation       string   `json:"preparation,omitempty"`
	Dosage            string   `json:"dosage,omitempty"`
	Contraindications []string `json:"contraindications,omitempty"`
	SideEffects       []string `json:"side_effects,omitempty"`
	Region            string   `json:"region,omitempty"`
	Availability      string   `json:"availability,omitempty"`
}

// Slug derives the catalog key from a common name.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// Catalog is a process-wide, read-mostly lookup table backed by a single
// shared JSON file. Mutations rewrite the whole file; the tables are small
// enough that this is acceptable.
type Catalog struct {
	kind Kind
	path string

	mu      sync.RWMutex
	entries map[string]Entry
}

// Load opens a catalog, seeding the default entries on first use.
func Load(dataDir string, kind Kind) (*Catalog, error) {
	c := &Catalog{
		kind: kind,
		path: filepath.Join(dataDir, kind.fileName()),
	}

	entries := map[string]Entry{}
	ok, err := storage.ReadJSON(c.path, &entries)
	if err != nil {
		return nil, fmt.Errorf("load %s catalog: %w", kind, err)
	}
	if !ok {
		entries = defaults(kind)
		if err := storage.AtomicWriteJSON(c.path, entries); err != nil {
			return nil, fmt.Errorf("seed %s catalog: %w", kind, err)
		}
	}
	c.entries = entries
	return c, nil
}

// Get returns the entry for a slug.
func (c *Catalog) Get(slug string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[slug]
	return e, ok
}

// Keys returns the sorted slug list, used when assembling prompt context.
func (c *Catalog) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// All returns a copy of the catalog keyed by slug.
func (c *Catalog) All() map[string]Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]Entry, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// Search matches the term against names, scientific names and uses,
// case-insensitively. An empty term returns everything.
func (c *Catalog) Search(term string) map[string]Entry {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return c.All()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := map[string]Entry{}
	for slug, e := range c.entries {
		if strings.Contains(strings.ToLower(e.Name), term) ||
			strings.Contains(strings.ToLower(e.ScientificName), term) {
			out[slug] = e
			continue
		}
		for _, use := range e.Uses {
			if strings.Contains(strings.ToLower(use), term) {
				out[slug] = e
				break
			}
		}
	}
	return out
}

// Add appends a new entry under the slug of its name and persists the full
// catalog.
func (c *Catalog) Add(e Entry) (string, error) {
	if e.Name == "" || len(e.Uses) == 0 {
		return "", fmt.Errorf("catalog entry needs a name and at least one use")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	slug := Slug(e.Name)
	c.entries[slug] = e
	if err := storage.AtomicWriteJSON(c.path, c.entries); err != nil {
		return "", fmt.Errorf("save %s catalog: %w", c.kind, err)
	}
	return slug, nil
}
