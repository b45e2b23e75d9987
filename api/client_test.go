package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "rental-storefront/model"
)

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// newBackend builds a mock REST backend under the versioned API root.
func newBackend(t *testing.T, register func(r *mux.Router)) *Client {
	t.Helper()
	r := mux.NewRouter()
	register(r.PathPrefix("/api/v1").Subrouter())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestCallAttachesBearerOnlyWithToken(t *testing.T) {
	var gotAuth []string
	c := newBackend(t, func(r *mux.Router) {
		r.HandleFunc("/produtos", func(w http.ResponseWriter, req *http.Request) {
			gotAuth = append(gotAuth, req.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, []any{})
		}).Methods("GET")
	})

	_, err := c.Call(context.Background(), http.MethodGet, "produtos", nil, "")
	require.NoError(t, err)
	_, err = c.Call(context.Background(), http.MethodGet, "produtos", nil, "tok-1")
	require.NoError(t, err)

	require.Len(t, gotAuth, 2)
	assert.Equal(t, "", gotAuth[0])
	assert.Equal(t, "Bearer tok-1", gotAuth[1])
}

func TestCallErrorMessagePreference(t *testing.T) {
	cases := []struct {
		name string
		code int
		body string
		want string
	}{
		{"error field", http.StatusNotFound, `{"error":"not found"}`, "not found"},
		{"message field", http.StatusBadRequest, `{"message":"bad input"}`, "bad input"},
		{"raw text", http.StatusInternalServerError, `boom`, "boom"},
		{"empty body", http.StatusBadGateway, ``, "API request failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newBackend(t, func(r *mux.Router) {
				r.HandleFunc("/x", func(w http.ResponseWriter, req *http.Request) {
					w.WriteHeader(tc.code)
					_, _ = w.Write([]byte(tc.body))
				})
			})
			_, err := c.Call(context.Background(), http.MethodGet, "x", nil, "")
			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.code, se.Code)
			assert.Equal(t, tc.want, se.Message)
		})
	}
}

func TestCallEmptySuccessBodyDecodesAsObject(t *testing.T) {
	c := newBackend(t, func(r *mux.Router) {
		r.HandleFunc("/x", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})
	raw, err := c.Call(context.Background(), http.MethodGet, "x", nil, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestCallTransportFailure(t *testing.T) {
	c := NewClient("http://127.0.0.1:1") // nothing listens here
	_, err := c.Call(context.Background(), http.MethodGet, "produtos", nil, "")
	assert.True(t, IsConnError(err), "expected ConnError, got %v", err)
}

func TestLogin(t *testing.T) {
	c := newBackend(t, func(r *mux.Router) {
		r.HandleFunc("/login", func(w http.ResponseWriter, req *http.Request) {
			var creds Credentials
			require.NoError(t, json.NewDecoder(req.Body).Decode(&creds))
			if creds.Email == "u@x.com" && creds.Password == "secret1" {
				writeJSON(w, http.StatusOK, map[string]string{"token": "tok-u"})
				return
			}
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		}).Methods("POST")
	})

	token, err := c.Login(context.Background(), Credentials{Email: "u@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "tok-u", token)

	_, err = c.Login(context.Background(), Credentials{Email: "u@x.com", Password: "wrong!"})
	assert.True(t, IsAuthError(err))
	assert.EqualError(t, err, "invalid credentials")

	// empty credentials never reach the wire
	_, err = c.Login(context.Background(), Credentials{})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestLoginResponseWithoutToken(t *testing.T) {
	c := newBackend(t, func(r *mux.Router) {
		r.HandleFunc("/login", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		}).Methods("POST")
	})
	_, err := c.Login(context.Background(), Credentials{Email: "u@x.com", Password: "secret1"})
	require.Error(t, err)
}

func TestSignupValidation(t *testing.T) {
	base := SignupRequest{
		Name:            "Ana",
		Email:           "ana@x.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		CPF:             "12345678901",
	}

	cases := []struct {
		name   string
		mutate func(*SignupRequest)
		reason string
	}{
		{"password mismatch", func(r *SignupRequest) { r.ConfirmPassword = "other" }, "passwords do not match"},
		{"short password", func(r *SignupRequest) { r.Password, r.ConfirmPassword = "abc", "abc" }, "password must be at least 6 characters"},
		{"no document", func(r *SignupRequest) { r.CPF = "" }, "either CPF or CNPJ is required"},
		{"bad cpf", func(r *SignupRequest) { r.CPF = "123" }, "CPF must have exactly 11 digits"},
		{"bad cnpj", func(r *SignupRequest) { r.CPF = ""; r.CNPJ = "99" }, "CNPJ must have exactly 14 digits"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			err := req.Validate()
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.reason, ve.Reason)
		})
	}

	assert.NoError(t, base.Validate())
}

func TestGetProduct(t *testing.T) {
	c := newBackend(t, func(r *mux.Router) {
		r.HandleFunc("/produtos/{id}", func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, "42", mux.Vars(req)["id"])
			writeJSON(w, http.StatusOK, map[string]any{
				"id_roupa": 42, "categoria": "Vestido", "tempo_valor": 99.9, "status": "disponivel",
			})
		}).Methods("GET")
	})

	p, err := c.GetProduct(context.Background(), "tok", 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.ID)
	assert.Equal(t, 99.9, p.Price)
	assert.True(t, p.Available())
}

func TestCreateSaleWireShape(t *testing.T) {
	var got SaleRequest
	var idemKey string
	c := newBackend(t, func(r *mux.Router) {
		r.HandleFunc("/sales", func(w http.ResponseWriter, req *http.Request) {
			idemKey = req.Header.Get("Idempotency-Key")
			require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
			writeJSON(w, http.StatusCreated, map[string]any{"produtoId": got.ProdutoID, "total": 120.0})
		}).Methods("POST")
	})

	resp, err := c.CreateSale(context.Background(), "tok", 7, 60)
	require.NoError(t, err)
	assert.Equal(t, SaleRequest{ProdutoID: 7, Quantidade: 1, TempoValor: 60}, got)
	assert.Equal(t, int64(7), resp.ProdutoID)
	assert.Equal(t, 120.0, resp.Total)
	assert.NotEmpty(t, idemKey)
}

func TestListSalesFiltersInactive(t *testing.T) {
	c := newBackend(t, func(r *mux.Router) {
		r.HandleFunc("/sales", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, []map[string]any{
				{"id": 1, "produtoId": 5, "total": map[string]any{"Float64": 50.0, "Valid": true}, "Ativa": map[string]any{"Bool": true, "Valid": true}},
				{"id": 2, "produtoId": 6, "Ativa": map[string]any{"Bool": false, "Valid": true}},
			})
		}).Methods("GET")
	})

	sales, err := c.ListSales(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, models.Sale{ID: 1, ProductID: 5, Total: 50, Active: true}, sales[0])
}

func TestCreateProductMultipart(t *testing.T) {
	c := newBackend(t, func(r *mux.Router) {
		r.HandleFunc("/produtos", func(w http.ResponseWriter, req *http.Request) {
			require.NoError(t, req.ParseMultipartForm(1<<20))
			assert.Equal(t, "Vestido", req.FormValue("categoria"))
			assert.Equal(t, "75", req.FormValue("tempo_valor"))
			file, header, err := req.FormFile("image")
			require.NoError(t, err)
			defer file.Close()
			assert.Equal(t, "dress.png", header.Filename)
			writeJSON(w, http.StatusCreated, map[string]any{"id_roupa": 9, "categoria": "Vestido"})
		}).Methods("POST")
	})

	p, err := c.CreateProduct(context.Background(), "tok", ProductInput{
		Category: "Vestido", Size: models.SizeM, Price: 75, Status: models.StatusAvailable,
	}, &Upload{Filename: "dress.png", Content: strings.NewReader("fake-png")})
	require.NoError(t, err)
	assert.Equal(t, int64(9), p.ID)
}
