package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	models "rental-storefront/model"
)

// Credentials is an email/password pair for either role's login route.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a storefront user and returns the bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	return c.login(ctx, "login", creds)
}

// AdminLogin authenticates an administrator. The admin identity is
// issued independently of the user identity.
func (c *Client) AdminLogin(ctx context.Context, creds Credentials) (string, error) {
	return c.login(ctx, "admin/login", creds)
}

func (c *Client) login(ctx context.Context, endpoint string, creds Credentials) (string, error) {
	if creds.Email == "" || creds.Password == "" {
		return "", &ValidationError{Reason: "email and password are required"}
	}
	raw, err := c.Call(ctx, http.MethodPost, endpoint, creds, "")
	if err != nil {
		return "", err
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if resp.Token == "" {
		return "", &StatusError{Code: http.StatusOK, Message: "login response carried no token"}
	}
	return resp.Token, nil
}

// SignupRequest is a new user registration.
type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
	CPF             string `json:"cpf,omitempty"`
	CNPJ            string `json:"cnpj,omitempty"`
	Phone           string `json:"celular,omitempty"`
}

// Validate applies the client-side form constraints before the request
// leaves the machine.
func (r SignupRequest) Validate() error {
	if r.Password != r.ConfirmPassword {
		return &ValidationError{Reason: "passwords do not match"}
	}
	if len(r.Password) < 6 {
		return &ValidationError{Reason: "password must be at least 6 characters"}
	}
	if r.CPF == "" && r.CNPJ == "" {
		return &ValidationError{Reason: "either CPF or CNPJ is required"}
	}
	if r.CPF != "" && len(r.CPF) != 11 {
		return &ValidationError{Reason: "CPF must have exactly 11 digits"}
	}
	if r.CNPJ != "" && len(r.CNPJ) != 14 {
		return &ValidationError{Reason: "CNPJ must have exactly 14 digits"}
	}
	return nil
}

// Signup registers a new storefront user.
func (c *Client) Signup(ctx context.Context, req SignupRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := c.Call(ctx, http.MethodPost, "cadastros", req, "")
	return err
}

// AdminSignupRequest is a new administrator registration; admins always
// register with a CNPJ.
type AdminSignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
	CNPJ            string `json:"cnpj"`
}

func (r AdminSignupRequest) Validate() error {
	if r.Password != r.ConfirmPassword {
		return &ValidationError{Reason: "passwords do not match"}
	}
	if len(r.Password) < 6 {
		return &ValidationError{Reason: "password must be at least 6 characters"}
	}
	if len(r.CNPJ) != 14 {
		return &ValidationError{Reason: "CNPJ must have exactly 14 digits"}
	}
	return nil
}

// AdminSignup registers a new administrator.
func (c *Client) AdminSignup(ctx context.Context, req AdminSignupRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := c.Call(ctx, http.MethodPost, "admin/create", req, "")
	return err
}

// ListProducts fetches the whole catalog.
func (c *Client) ListProducts(ctx context.Context, token string) ([]models.Product, error) {
	raw, err := c.Call(ctx, http.MethodGet, "produtos", nil, token)
	if err != nil {
		return nil, err
	}
	return models.DecodeProducts(raw)
}

// GetProduct fetches one product by id. This is the authoritative
// availability check the confirmation flow relies on.
func (c *Client) GetProduct(ctx context.Context, token string, id int64) (models.Product, error) {
	raw, err := c.Call(ctx, http.MethodGet, "produtos/"+strconv.FormatInt(id, 10), nil, token)
	if err != nil {
		return models.Product{}, err
	}
	return models.DecodeProduct(raw)
}

// ProductInput is the admin-supplied product description for create and
// update calls.
type ProductInput struct {
	Category string        `json:"categoria"`
	Size     models.Size   `json:"tamanho"`
	Colors   string        `json:"cores"`
	Price    float64       `json:"tempo_valor"`
	Status   models.Status `json:"status"`
	Location string        `json:"localizacao"`
}

// Upload is an image attached to a product create call.
type Upload struct {
	Filename string
	Content  io.Reader
}

// CreateProduct creates a catalog entry, attaching the image as a
// multipart upload when one is supplied.
func (c *Client) CreateProduct(ctx context.Context, token string, input ProductInput, image *Upload) (models.Product, error) {
	var body any = input
	if image != nil {
		raw, contentType, err := encodeProductForm(input, image)
		if err != nil {
			return models.Product{}, err
		}
		body = RawBody{ContentType: contentType, Data: raw}
	}
	resp, err := c.Call(ctx, http.MethodPost, "produtos", body, token)
	if err != nil {
		return models.Product{}, err
	}
	return models.DecodeProduct(resp)
}

// UpdateProduct replaces a catalog entry.
func (c *Client) UpdateProduct(ctx context.Context, token string, id int64, input ProductInput) error {
	_, err := c.Call(ctx, http.MethodPut, "produtos/"+strconv.FormatInt(id, 10), input, token)
	return err
}

// DeleteProduct removes a catalog entry.
func (c *Client) DeleteProduct(ctx context.Context, token string, id int64) error {
	_, err := c.Call(ctx, http.MethodDelete, "produtos/"+strconv.FormatInt(id, 10), nil, token)
	return err
}

func encodeProductForm(input ProductInput, image *Upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"categoria":   input.Category,
		"tamanho":     string(input.Size),
		"cores":       input.Colors,
		"tempo_valor": strconv.FormatFloat(input.Price, 'f', -1, 64),
		"status":      string(input.Status),
		"localizacao": input.Location,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("encode form field %s: %w", name, err)
		}
	}
	part, err := w.CreateFormFile("image", image.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("encode image part: %w", err)
	}
	if _, err := io.Copy(part, image.Content); err != nil {
		return nil, "", fmt.Errorf("copy image: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finish multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// SaleRequest is the wire shape of a rental creation.
type SaleRequest struct {
	ProdutoID  int64   `json:"produtoId"`
	Quantidade int     `json:"quantidade"`
	TempoValor float64 `json:"tempoValor"`
}

// SaleResponse is what the backend reports for a committed rental. The
// total may be absent, in which case callers fall back to the price
// they sent.
type SaleResponse struct {
	ProdutoID int64   `json:"produtoId"`
	Total     float64 `json:"total"`
}

// CreateSale commits one rental for the given product. Quantity is
// fixed at 1: garments are rented per piece. An Idempotency-Key header
// protects against double-commit when a response is lost.
func (c *Client) CreateSale(ctx context.Context, token string, productID int64, price float64) (SaleResponse, error) {
	req := SaleRequest{ProdutoID: productID, Quantidade: 1, TempoValor: price}
	raw, err := c.Call(ctx, http.MethodPost, "sales", req, token,
		withHeader("Idempotency-Key", uuid.NewString()))
	if err != nil {
		return SaleResponse{}, err
	}
	var resp SaleResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return SaleResponse{}, fmt.Errorf("decode sale response: %w", err)
	}
	return resp, nil
}

// ListSales fetches back-office sales, filtered to active records.
func (c *Client) ListSales(ctx context.Context, token string) ([]models.Sale, error) {
	raw, err := c.Call(ctx, http.MethodGet, "sales", nil, token)
	if err != nil {
		return nil, err
	}
	sales, err := models.DecodeSales(raw)
	if err != nil {
		return nil, err
	}
	active := sales[:0]
	for _, s := range sales {
		if s.Active {
			active = append(active, s)
		}
	}
	return active, nil
}

// InactivateSale soft-deletes one sale record.
func (c *Client) InactivateSale(ctx context.Context, token string, id int64) error {
	_, err := c.Call(ctx, http.MethodPut, "sales/"+strconv.FormatInt(id, 10)+"/inactivate", nil, token)
	return err
}
