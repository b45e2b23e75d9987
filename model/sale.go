package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Sale is a rental record as the back office sees it.
type Sale struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"produtoId"`
	Total     float64 `json:"total"`
	Active    bool    `json:"ativa"`
}

// saleWire tolerates the nullable wrappers the backend serializes for
// sql.Null* columns ({"Float64":..,"Valid":..} and {"Bool":..,"Valid":..})
// as well as plain scalars from newer deployments.
type saleWire struct {
	ID        int64           `json:"id"`
	ProdCamel *int64          `json:"produtoId"`
	ProdSnake *int64          `json:"produto_id"`
	Total     json.RawMessage `json:"total"`
	Ativa     json.RawMessage `json:"Ativa"`
	AtivaLow  json.RawMessage `json:"ativa"`
}

// DecodeSale normalizes one sale row.
func DecodeSale(raw []byte) (Sale, error) {
	var w saleWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Sale{}, fmt.Errorf("decode sale: %w", err)
	}
	s := Sale{ID: w.ID}
	switch {
	case w.ProdCamel != nil:
		s.ProductID = *w.ProdCamel
	case w.ProdSnake != nil:
		s.ProductID = *w.ProdSnake
	}
	if total, ok := decodeNullableFloat(w.Total); ok {
		s.Total = total
	}
	ativa := w.Ativa
	if len(ativa) == 0 {
		ativa = w.AtivaLow
	}
	if active, ok := decodeNullableBool(ativa); ok {
		s.Active = active
	}
	return s, nil
}

// DecodeSales decodes a sales listing. A single bare object is treated
// as a one-element list, matching how the backend answers some lookups.
func DecodeSales(raw []byte) ([]Sale, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		one, oneErr := DecodeSale(raw)
		if oneErr != nil {
			return nil, fmt.Errorf("decode sale list: %w", err)
		}
		return []Sale{one}, nil
	}
	out := make([]Sale, 0, len(items))
	for _, item := range items {
		s, err := DecodeSale(item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeNullableFloat(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	var wrapped struct {
		Float64 float64 `json:"Float64"`
		Valid   bool    `json:"Valid"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Valid {
		return wrapped.Float64, true
	}
	return 0, false
}

func decodeNullableBool(raw json.RawMessage) (bool, bool) {
	if len(raw) == 0 {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}
	var wrapped struct {
		Bool  bool `json:"Bool"`
		Valid bool `json:"Valid"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Valid {
		return wrapped.Bool, true
	}
	return false, false
}
