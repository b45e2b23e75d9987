package models

import (
	"testing"
)

func TestDecodeProductAliases(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Product
	}{
		{
			name: "snake_case fields",
			raw:  `{"id_roupa":7,"categoria":"Vestido","tamanho":"M","cores":"azul","tempo_valor":120.5,"status":"disponivel","localizacao":"A1","image_url":"https://cdn/x.jpg"}`,
			want: Product{ID: 7, Category: "Vestido", Size: SizeM, Colors: "azul", Price: 120.5, Status: StatusAvailable, Location: "A1", ImageURL: "https://cdn/x.jpg"},
		},
		{
			name: "camelCase price and plain id",
			raw:  `{"id":3,"categoria":"Terno","tamanho":"G","tempoValor":80,"status":"alugado"}`,
			want: Product{ID: 3, Category: "Terno", Size: SizeG, Price: 80, Status: StatusRented},
		},
		{
			name: "imagem_url fallback",
			raw:  `{"id_roupa":1,"imagem_url":"dress.png","status":"manutencao"}`,
			want: Product{ID: 1, ImageURL: "dress.png", Status: StatusMaintenance},
		},
		{
			name: "missing status defaults to available",
			raw:  `{"id_roupa":2}`,
			want: Product{ID: 2, Status: StatusAvailable},
		},
		{
			name: "id_roupa wins over id",
			raw:  `{"id":9,"id_roupa":4}`,
			want: Product{ID: 4, Status: StatusAvailable},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeProduct([]byte(tc.raw))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestDecodeProductBadJSON(t *testing.T) {
	if _, err := DecodeProduct([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}

func TestDecodeProducts(t *testing.T) {
	raw := `[{"id_roupa":1,"tempo_valor":50},{"id_roupa":2,"tempoValor":30}]`
	got, err := DecodeProducts([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Price != 50 || got[1].Price != 30 {
		t.Fatalf("unexpected products: %+v", got)
	}

	// null listing decodes as empty
	got, err = DecodeProducts([]byte(`null`))
	if err != nil {
		t.Fatalf("unexpected error for null listing: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty slice, got %+v", got)
	}
}

func TestNormalizeImageURL(t *testing.T) {
	base := "https://backend.example.com"
	cases := []struct {
		ref  string
		want string
	}{
		{"", PlaceholderImage},
		{"https://cdn/x.jpg", "https://cdn/x.jpg"},
		{"http://localhost:8080/uploads/a.png", base + "/uploads/a.png"},
		{"dress.png", base + "/uploads/dress.png"},
		{"http://other.host/a.png", "http://other.host/a.png"},
	}
	for _, tc := range cases {
		if got := NormalizeImageURL(tc.ref, base); got != tc.want {
			t.Fatalf("NormalizeImageURL(%q) = %q, want %q", tc.ref, got, tc.want)
		}
	}
}

func TestValidSize(t *testing.T) {
	for _, s := range []Size{SizePP, SizeP, SizeM, SizeG, SizeGG, SizeXG} {
		if !ValidSize(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	if ValidSize("XXL") {
		t.Fatalf("expected XXL to be invalid")
	}
}
