package main

// rental-storefront CLI:
//   login / logout / signup          - user identity
//   catalog [-status] [-search]      - browse the cached catalog
//   cart add|remove|list <id>        - manage the pending selection
//   checkout                         - confirm the whole cart
//   rent <id>                        - immediate single-item rental
//   admin login|logout               - admin identity
//   admin products list|create|update|delete
//   admin sales list|inactivate

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"text/tabwriter"

	"rental-storefront/api"
	"rental-storefront/cart"
	"rental-storefront/catalog"
	"rental-storefront/config"
	models "rental-storefront/model"
	"rental-storefront/session"
	"rental-storefront/store"
)

func main() {
	log.SetFlags(0)

	cfg, err := config.Load(os.Getenv("RENTAL_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer st.Close()

	opts := []api.Option{api.WithTimeout(cfg.Timeout)}
	if cfg.Tracing {
		opts = append(opts, api.WithTracing())
	}
	client := api.NewClient(cfg.APIURL, opts...)

	sessions, err := session.NewManager(st)
	if err != nil {
		log.Fatalf("sessions: %v", err)
	}
	reconciler, err := cart.NewReconciler(st, client)
	if err != nil {
		log.Fatalf("cart: %v", err)
	}

	app := &app{
		client:     client,
		sessions:   sessions,
		catalog:    catalog.NewCache(client, cfg.APIURL),
		reconciler: reconciler,
	}
	if err := app.run(context.Background(), os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}
}

func openStore(cfg config.Config) (store.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return store.NewMemStore(), nil
	case config.DriverPostgres:
		return store.NewSQLStore(cfg.Storage.DSN)
	case config.DriverRedis:
		return store.NewRedisStore(cfg.Storage.RedisURL, cfg.Storage.Namespace)
	default:
		return store.OpenFileStore(cfg.Storage.Path)
	}
}

type app struct {
	client     *api.Client
	sessions   *session.Manager
	catalog    *catalog.Cache
	reconciler *cart.Reconciler
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: rental-storefront <login|logout|signup|catalog|cart|checkout|rent|admin> ...")
	}
	switch args[0] {
	case "login":
		return a.login(ctx, models.RoleUser, args[1:])
	case "logout":
		return a.sessions.Logout(models.RoleUser)
	case "signup":
		return a.signup(ctx, args[1:])
	case "catalog":
		return a.showCatalog(ctx, args[1:])
	case "cart":
		return a.cartCmd(ctx, args[1:])
	case "checkout":
		return a.checkout(ctx)
	case "rent":
		return a.rentNow(ctx, args[1:])
	case "admin":
		return a.adminCmd(ctx, args[1:])
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func (a *app) login(ctx context.Context, role models.Role, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	creds := api.Credentials{Email: *email, Password: *password}
	var token string
	var err error
	if role == models.RoleAdmin {
		token, err = a.client.AdminLogin(ctx, creds)
	} else {
		token, err = a.client.Login(ctx, creds)
	}
	if err != nil {
		return err
	}
	if err := a.sessions.Login(role, token, *email); err != nil {
		return err
	}
	fmt.Printf("logged in as %s (%s)\n", *email, role)
	return nil
}

func (a *app) signup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	req := api.SignupRequest{}
	fs.StringVar(&req.Name, "name", "", "full name")
	fs.StringVar(&req.Email, "email", "", "email")
	fs.StringVar(&req.Password, "password", "", "password")
	fs.StringVar(&req.ConfirmPassword, "confirm", "", "password confirmation")
	fs.StringVar(&req.CPF, "cpf", "", "CPF, 11 digits")
	fs.StringVar(&req.CNPJ, "cnpj", "", "CNPJ, 14 digits")
	fs.StringVar(&req.Phone, "phone", "", "phone number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.client.Signup(ctx, req); err != nil {
		return err
	}
	fmt.Println("account created, check your email for activation")
	return nil
}

func (a *app) showCatalog(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("catalog", flag.ContinueOnError)
	status := fs.String("status", "", "filter: disponivel, alugado or manutencao")
	search := fs.String("search", "", "match category, colors or id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.refreshCatalog(ctx); err != nil {
		return err
	}
	products := a.catalog.List(catalog.Filter{Status: models.Status(*status), SearchTerm: *search})

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tSIZE\tCOLORS\tPRICE\tSTATUS\tLOCATION")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
			p.ID, p.Category, p.Size, p.Colors, p.Price, p.Status, p.Location)
	}
	return w.Flush()
}

func (a *app) cartCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: cart <add|remove|list> [id]")
	}
	switch args[0] {
	case "add":
		id, err := parseID(args[1:])
		if err != nil {
			return err
		}
		if err := a.refreshCatalog(ctx); err != nil {
			return err
		}
		p, ok := a.catalog.Get(id)
		if !ok {
			return fmt.Errorf("product %d not in catalog", id)
		}
		switch err := a.reconciler.Add(p); {
		case errors.Is(err, cart.ErrDuplicateInCart):
			fmt.Println("already in cart")
			return nil
		case errors.Is(err, cart.ErrUnavailable):
			fmt.Println("product is not available")
			return nil
		case err != nil:
			return err
		}
		fmt.Printf("added %s (%.2f), cart total %.2f\n", p.Category, p.Price, a.reconciler.Total())
		return nil
	case "remove":
		id, err := parseID(args[1:])
		if err != nil {
			return err
		}
		if err := a.reconciler.Remove(id); err != nil {
			return err
		}
		fmt.Printf("removed, cart total %.2f\n", a.reconciler.Total())
		return nil
	case "list":
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCATEGORY\tSIZE\tPRICE\tADDED")
		for _, item := range a.reconciler.Items() {
			p := item.Product
			fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%s\n",
				p.ID, p.Category, p.Size, p.Price, item.AddedAt.Format("2006-01-02 15:04"))
		}
		fmt.Fprintf(w, "\ttotal\t\t%.2f\t\n", a.reconciler.Total())
		return w.Flush()
	}
	return fmt.Errorf("unknown cart command %q", args[0])
}

func (a *app) checkout(ctx context.Context) error {
	report, err := a.reconciler.Checkout(ctx, a.sessions.Token(models.RoleUser))
	return a.finishConfirmation(report, err)
}

func (a *app) rentNow(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if err := a.refreshCatalog(ctx); err != nil {
		return err
	}
	p, ok := a.catalog.Get(id)
	if !ok {
		return fmt.Errorf("product %d not in catalog", id)
	}
	if err := a.reconciler.Add(p); err != nil && !errors.Is(err, cart.ErrDuplicateInCart) {
		return err
	}
	report, err := a.reconciler.CheckoutOne(ctx, a.sessions.Token(models.RoleUser), id)
	return a.finishConfirmation(report, err)
}

// finishConfirmation prints the batch summary and drops the user
// session when the backend rejected its token mid-run.
func (a *app) finishConfirmation(report cart.Report, err error) error {
	if err != nil {
		if api.IsAuthError(err) {
			_ = a.sessions.Invalidate(models.RoleUser)
			return fmt.Errorf("session expired, please log in again: %w", err)
		}
		return err
	}
	for _, o := range report.Outcomes {
		switch o.Kind {
		case cart.OutcomeConfirmed:
			fmt.Printf("product %d rented, total %.2f\n", o.ProductID, o.Record.Total)
		case cart.OutcomeSkipped:
			fmt.Printf("product %d skipped: %s\n", o.ProductID, o.Message)
		case cart.OutcomeFailed:
			fmt.Printf("product %d failed: %s\n", o.ProductID, o.Message)
		}
	}
	fmt.Printf("confirmed %d, skipped %d, failed %d\n", report.Succeeded, report.Skipped, report.Failed)
	return nil
}

func (a *app) adminCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: admin <login|logout|products|sales> ...")
	}
	token := a.sessions.Token(models.RoleAdmin)
	switch args[0] {
	case "login":
		return a.login(ctx, models.RoleAdmin, args[1:])
	case "logout":
		return a.sessions.Logout(models.RoleAdmin)
	case "products":
		return a.adminProducts(ctx, token, args[1:])
	case "sales":
		return a.adminSales(ctx, token, args[1:])
	}
	return fmt.Errorf("unknown admin command %q", args[0])
}

func (a *app) adminProducts(ctx context.Context, token string, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: admin products <list|create|update|delete> ...")
	}
	switch args[0] {
	case "list":
		return a.showCatalog(ctx, nil)
	case "create", "update":
		fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
		input := api.ProductInput{}
		var id int64
		var size, status, image string
		fs.Int64Var(&id, "id", 0, "product id (update only)")
		fs.StringVar(&input.Category, "category", "", "category")
		fs.StringVar(&size, "size", "M", "PP, P, M, G, GG or XG")
		fs.StringVar(&input.Colors, "colors", "", "colors")
		fs.Float64Var(&input.Price, "price", 0, "rental price")
		fs.StringVar(&status, "status", string(models.StatusAvailable), "status")
		fs.StringVar(&input.Location, "location", "", "storage location")
		fs.StringVar(&image, "image", "", "image file (create only)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		input.Size = models.Size(size)
		input.Status = models.Status(status)
		if !models.ValidSize(input.Size) {
			return fmt.Errorf("invalid size %q", size)
		}

		if args[0] == "update" {
			if id == 0 {
				return errors.New("update requires -id")
			}
			return a.client.UpdateProduct(ctx, token, id, input)
		}
		var upload *api.Upload
		if image != "" {
			f, err := os.Open(image)
			if err != nil {
				return err
			}
			defer f.Close()
			upload = &api.Upload{Filename: image, Content: f}
		}
		p, err := a.client.CreateProduct(ctx, token, input, upload)
		if err != nil {
			return err
		}
		fmt.Printf("created product %d\n", p.ID)
		return nil
	case "delete":
		id, err := parseID(args[1:])
		if err != nil {
			return err
		}
		return a.client.DeleteProduct(ctx, token, id)
	}
	return fmt.Errorf("unknown products command %q", args[0])
}

func (a *app) adminSales(ctx context.Context, token string, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: admin sales <list|inactivate> [id]")
	}
	switch args[0] {
	case "list":
		sales, err := a.client.ListSales(ctx, token)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPRODUCT\tTOTAL")
		for _, s := range sales {
			fmt.Fprintf(w, "%d\t%d\t%.2f\n", s.ID, s.ProductID, s.Total)
		}
		return w.Flush()
	case "inactivate":
		id, err := parseID(args[1:])
		if err != nil {
			return err
		}
		return a.client.InactivateSale(ctx, token, id)
	}
	return fmt.Errorf("unknown sales command %q", args[0])
}

func (a *app) refreshCatalog(ctx context.Context) error {
	return a.catalog.Refresh(ctx, a.sessions.Token(models.RoleUser))
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, errors.New("product id required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid product id %q", args[0])
	}
	return id, nil
}
