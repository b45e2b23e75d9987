package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status mirrors the wire values the backend uses for rentability.
// The product status is the single source of truth: a client-side
// snapshot may be stale and must be re-checked before committing a rental.
type Status string

const (
	StatusAvailable   Status = "disponivel"
	StatusRented      Status = "alugado"
	StatusMaintenance Status = "manutencao"
)

// Size is the garment size scale used by the catalog.
type Size string

const (
	SizePP Size = "PP"
	SizeP  Size = "P"
	SizeM  Size = "M"
	SizeG  Size = "G"
	SizeGG Size = "GG"
	SizeXG Size = "XG"
)

// ValidSize reports whether s is one of the known garment sizes.
func ValidSize(s Size) bool {
	switch s {
	case SizePP, SizeP, SizeM, SizeG, SizeGG, SizeXG:
		return true
	}
	return false
}

// Product is a read-only snapshot of a catalog entry as last seen from
// the backend.
type Product struct {
	ID       int64   `json:"id"`
	Category string  `json:"categoria"`
	Size     Size    `json:"tamanho"`
	Colors   string  `json:"cores"`
	Price    float64 `json:"tempo_valor"`
	Status   Status  `json:"status"`
	Location string  `json:"localizacao"`
	ImageURL string  `json:"image_url"`
}

// Available reports whether the snapshot says the product can be rented.
func (p Product) Available() bool { return p.Status == StatusAvailable }

// productWire accepts every field alias the backend has been observed to
// emit. Older deployments send camelCase price and "imagem_url"; the id
// arrives as either "id" or "id_roupa".
type productWire struct {
	ID         *int64   `json:"id"`
	IDRoupa    *int64   `json:"id_roupa"`
	Categoria  string   `json:"categoria"`
	Tamanho    string   `json:"tamanho"`
	Cores      string   `json:"cores"`
	TempoSnake *float64 `json:"tempo_valor"`
	TempoCamel *float64 `json:"tempoValor"`
	Status     string   `json:"status"`
	Local      string   `json:"localizacao"`
	ImageURL   string   `json:"image_url"`
	ImagemURL  string   `json:"imagem_url"`
}

// DecodeProduct is the single place where backend payload drift is
// normalized. Every component receives products through this function,
// so alias handling never leaks past the API boundary.
func DecodeProduct(raw []byte) (Product, error) {
	var w productWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Product{}, fmt.Errorf("decode product: %w", err)
	}
	p := Product{
		Category: w.Categoria,
		Size:     Size(w.Tamanho),
		Colors:   w.Cores,
		Status:   Status(w.Status),
		Location: w.Local,
	}
	switch {
	case w.IDRoupa != nil:
		p.ID = *w.IDRoupa
	case w.ID != nil:
		p.ID = *w.ID
	}
	switch {
	case w.TempoSnake != nil:
		p.Price = *w.TempoSnake
	case w.TempoCamel != nil:
		p.Price = *w.TempoCamel
	}
	if w.ImageURL != "" {
		p.ImageURL = w.ImageURL
	} else {
		p.ImageURL = w.ImagemURL
	}
	if p.Status == "" {
		p.Status = StatusAvailable
	}
	return p, nil
}

// DecodeProducts decodes a catalog listing. A null body decodes to an
// empty slice rather than an error.
func DecodeProducts(raw []byte) ([]Product, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode product list: %w", err)
	}
	out := make([]Product, 0, len(items))
	for _, item := range items {
		p, err := DecodeProduct(item)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// PlaceholderImage is shown when a product carries no image reference.
const PlaceholderImage = "https://via.placeholder.com/300x400"

// legacyHost is the pre-migration host still present in old image rows.
const legacyHost = "http://localhost:8080"

// NormalizeImageURL rewrites the image reference into a fetchable URL:
// absolute https URLs pass through, rows pointing at the retired local
// host are rebased onto baseURL, and bare filenames resolve under the
// backend's uploads path.
func NormalizeImageURL(ref, baseURL string) string {
	switch {
	case ref == "":
		return PlaceholderImage
	case strings.HasPrefix(ref, "https://"):
		return ref
	case strings.HasPrefix(ref, legacyHost):
		return strings.TrimSuffix(baseURL, "/") + strings.TrimPrefix(ref, legacyHost)
	case !strings.HasPrefix(ref, "http"):
		return strings.TrimSuffix(baseURL, "/") + "/uploads/" + ref
	}
	return ref
}
