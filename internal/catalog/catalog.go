package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

//go:embed products.json
var defaultProducts []byte

var ErrUnknownProduct = errors.New("unknown product")

const (
	PromptChooseCategory = "Choose a category to view products."
	EmptyListing         = "No products in this category."
)

type Product struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type Catalog struct {
	products []Product
	byID     map[int]int
}

type catalogFile struct {
	Products []Product `json:"products"`
}

func Parse(r io.Reader) (*Catalog, error) {
	var file catalogFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	c := &Catalog{
		products: make([]Product, 0, len(file.Products)),
		byID:     make(map[int]int, len(file.Products)),
	}
	for _, p := range file.Products {
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("decode catalog: duplicate product id %d", p.ID)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, error) {
	return Parse(bytes.NewReader(defaultProducts))
}

// Open loads the catalog at path, or the bundled one when path is empty.
func Open(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	return Load(path)
}

func (c *Catalog) All() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Len() int {
	return len(c.products)
}

func (c *Catalog) Find(id int) (Product, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[idx], true
}

// Resolve maps ids to products in the same order, skipping unknown ids.
func (c *Catalog) Resolve(ids []int) []Product {
	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := c.Find(id); ok {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	result := make([]string, 0)
	for _, p := range c.products {
		category := strings.TrimSpace(p.Category)
		if category == "" {
			continue
		}
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		result = append(result, category)
	}
	sort.Strings(result)
	return result
}

// Filter returns the products in category whose name, brand or description
// contains query, ignoring case. Empty arguments do not filter.
func (c *Catalog) Filter(category, query string) []Product {
	category = strings.TrimSpace(category)
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(query))

	result := make([]Product, 0)
	for _, p := range c.products {
		if category != "" && p.Category != category {
			continue
		}
		if needle != "" {
			haystack := fold.String(p.Name + " " + p.Brand + " " + p.Description)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		result = append(result, p)
	}
	return result
}
