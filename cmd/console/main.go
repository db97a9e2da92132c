package main

import (
	"bufio"
	"context"
	goerrors "errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/clinic-console/internal/apiclient"
	"github.com/jwalitptl/clinic-console/internal/cache"
	"github.com/jwalitptl/clinic-console/internal/config"
	"github.com/jwalitptl/clinic-console/internal/controller"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/nav"
	"github.com/jwalitptl/clinic-console/internal/service/auth"
	"github.com/jwalitptl/clinic-console/internal/service/inventory"
	"github.com/jwalitptl/clinic-console/internal/service/patient"
	"github.com/jwalitptl/clinic-console/internal/service/staff"
	"github.com/jwalitptl/clinic-console/internal/session"
	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/logger"
	"github.com/jwalitptl/clinic-console/pkg/notifier"
)

// consoleNavigator prints page transitions and tracks the current page.
type consoleNavigator struct {
	mu   sync.Mutex
	page session.Page
}

func (n *consoleNavigator) Goto(page session.Page) {
	n.mu.Lock()
	n.page = page
	n.mu.Unlock()
	fmt.Printf("\n== pagina: %s ==\n", page)
}

func (n *consoleNavigator) current() session.Page {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.page
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(nil)

	store, err := session.NewFileStore(cfg.Client.StatePath)
	if err != nil {
		log.Fatal(err, "failed to open session store")
	}

	sess := session.New(store)
	navigator := &consoleNavigator{page: session.PageLogin}
	notif := notifier.NewConsole(os.Stdout)
	guard := session.NewGuard(sess, navigator, log)
	api := apiclient.New(cfg.API.BaseURL, cfg.API.Timeout(), sess, navigator, notif, log)
	validate := validator.New(validator.WithRequiredStructEnabled())

	authSvc := auth.NewService(api, sess, navigator, log)
	staffSvc := staff.NewService(api, sess, validate, log)
	patientSvc := patient.NewService(api, log)
	inventorySvc := inventory.NewService(api, validate, log)

	sink := func(r controller.Render) {
		fmt.Printf("\n[%s]\n%s\n", r.Section, r.Body)
		if r.PageLabel != "" {
			fmt.Printf("%s  (prev: %t, next: %t)\n", r.PageLabel, r.HasPrev, r.HasNext)
		}
	}

	cacheCfg := func(name string) cache.Config {
		return cache.Config{
			Name:         name,
			PageSize:     cfg.Client.PageSize,
			FetchTimeout: cfg.API.Timeout(),
			Logger:       log,
		}
	}

	reports := controller.NewReportsController(patientSvc,
		cache.NewResource[model.PatientReport](cacheCfg("patients")), notif, sink)
	staffCtl := controller.NewStaffController(staffSvc,
		cache.NewResource[model.Staff](cacheCfg("staff")), notif, sink)
	items := controller.NewItemsController(inventorySvc,
		cache.NewResource[model.Item](cacheCfg("items")), notif, sink)
	categories := controller.NewCategoriesController(inventorySvc,
		cache.NewResource[model.Category](cacheCfg("categories")), items.Items, notif, sink)
	transactions := controller.NewTransactionsController(inventorySvc,
		cache.NewResource[model.StockTransaction](cacheCfg("transactions")), items.Items, notif, sink)
	stats := controller.NewStatsController(inventorySvc, notif, sink)

	ctx := context.Background()
	sections := nav.NewSwitch(ctx, log)
	sections.Register(nav.Section{ID: controller.SectionReports, Load: reports.Load})
	sections.Register(nav.Section{ID: controller.SectionStaff, Load: staffCtl.Load})
	sections.Register(nav.Section{ID: controller.SectionItems, Load: items.Load})
	sections.Register(nav.Section{ID: controller.SectionCategories, Load: categories.Load})
	sections.Register(nav.Section{ID: controller.SectionTransactions, Load: transactions.Load})
	sections.Register(nav.Section{ID: controller.SectionInventoryStats, Load: stats.Load})

	if authSvc.Resume() {
		if principal := sess.Principal(); principal != nil {
			fmt.Printf("Bentornato, %s (%s)\n", principal.FullName(), principal.Role)
		}
	}

	fmt.Println("clinic-console - digita 'help' per i comandi")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help":
			printHelp()
		case "login":
			if len(fields) != 3 {
				fmt.Println("uso: login <utente> <password>")
				continue
			}
			if _, err := authSvc.Login(ctx, fields[1], fields[2]); err != nil {
				fmt.Println(errMessage(err))
			}
		case "logout":
			guard.Logout()
		case "whoami":
			if principal, err := guard.Validate(""); err == nil {
				fmt.Printf("%s (%s)\n", principal.FullName(), principal.Role)
			}
		case "open":
			if len(fields) != 2 {
				fmt.Println("uso: open <sezione>")
				continue
			}
			if err := sections.Activate(fields[1]); err != nil {
				fmt.Println(errMessage(err))
			}
		case "search":
			reports.Search(ctx, strings.Join(fields[1:], " "))
		case "date":
			if len(fields) == 2 {
				reports.SetDate(ctx, fields[1])
			}
		case "next":
			pageStep(ctx, sections.Active(), reports, items, transactions, true)
		case "prev":
			pageStep(ctx, sections.Active(), reports, items, transactions, false)
		case "create-staff":
			_ = staffCtl.Create(ctx, buildCreateStaffRequest(parseKV(fields[1:])))
		case "update-staff":
			if id, ok := parseLeadingID(fields); ok {
				_ = staffCtl.Update(ctx, id, buildUpdateStaffRequest(parseKV(fields[2:])))
			}
		case "create-category":
			_ = categories.Create(ctx, buildCategoryRequest(parseKV(fields[1:])))
		case "update-category":
			if id, ok := parseLeadingID(fields); ok {
				_ = categories.Update(ctx, id, buildCategoryRequest(parseKV(fields[2:])))
			}
		case "create-item":
			if req, err := buildItemRequest(parseKV(fields[1:])); err != nil {
				fmt.Println(err)
			} else {
				_ = items.Create(ctx, req)
			}
		case "update-item":
			if id, ok := parseLeadingID(fields); ok {
				if req, err := buildItemRequest(parseKV(fields[2:])); err != nil {
					fmt.Println(err)
				} else {
					_ = items.Update(ctx, id, req)
				}
			}
		case "record-tx":
			if req, err := buildTransactionRequest(parseKV(fields[1:])); err != nil {
				fmt.Println(err)
			} else {
				_ = transactions.Record(ctx, req, items)
			}
		case "change-password":
			if len(fields) != 4 {
				fmt.Println("uso: change-password <id> <nuova> <conferma>")
				continue
			}
			id, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				fmt.Println("serve un id numerico")
				continue
			}
			if err := staffSvc.ChangePassword(ctx, id, fields[2], fields[3]); err != nil {
				fmt.Println(errMessage(err))
			} else {
				fmt.Println("Password aggiornata")
			}
		case "update-profile":
			if _, err := staffSvc.UpdateProfile(ctx, buildProfileRequest(parseKV(fields[1:]))); err != nil {
				fmt.Println(errMessage(err))
			} else {
				fmt.Println("Profilo aggiornato")
			}
		case "delete-report":
			if len(fields) == 2 {
				_ = reports.Delete(ctx, fields[1])
			}
		case "delete-staff":
			if id, ok := parseID(fields); ok {
				_ = staffCtl.Delete(ctx, id)
			}
		case "delete-item":
			if id, ok := parseID(fields); ok {
				_ = items.Delete(ctx, id)
			}
		case "delete-category":
			if id, ok := parseID(fields); ok {
				_ = categories.Delete(ctx, id)
			}
		case "quit", "exit":
			return
		default:
			fmt.Println("comando sconosciuto, digita 'help'")
		}

		_ = navigator.current()
	}
}

func pageStep(ctx context.Context, active string, reports *controller.ReportsController, items *controller.ItemsController, transactions *controller.TransactionsController, forward bool) {
	switch active {
	case controller.SectionReports:
		if forward {
			reports.NextPage(ctx)
		} else {
			reports.PrevPage(ctx)
		}
	case controller.SectionItems:
		if forward {
			items.NextPage(ctx)
		} else {
			items.PrevPage(ctx)
		}
	case controller.SectionTransactions:
		if forward {
			transactions.NextPage(ctx)
		} else {
			transactions.PrevPage(ctx)
		}
	}
}

func parseID(fields []string) (int64, bool) {
	if len(fields) != 2 {
		fmt.Println("serve un id numerico")
		return 0, false
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		fmt.Println("serve un id numerico")
		return 0, false
	}
	return id, true
}

func parseLeadingID(fields []string) (int64, bool) {
	if len(fields) < 2 {
		fmt.Println("serve un id numerico")
		return 0, false
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		fmt.Println("serve un id numerico")
		return 0, false
	}
	return id, true
}

// parseKV turns "campo=valore" tokens into a map; tokens without '=' are
// ignored.
func parseKV(fields []string) map[string]string {
	kv := make(map[string]string, len(fields))
	for _, f := range fields {
		if i := strings.IndexByte(f, '='); i > 0 {
			kv[f[:i]] = f[i+1:]
		}
	}
	return kv
}

func buildCreateStaffRequest(kv map[string]string) *model.CreateStaffRequest {
	req := &model.CreateStaffRequest{
		Username:       kv["username"],
		Password:       kv["password"],
		FirstName:      kv["first_name"],
		LastName:       kv["last_name"],
		Email:          kv["email"],
		PhoneNumber:    kv["phone"],
		Role:           model.Role(kv["role"]),
		Status:         kv["status"],
		Specialization: kv["specialization"],
		LicenseNumber:  kv["license"],
	}
	if req.Status == "" {
		req.Status = "active"
	}
	return req
}

func buildUpdateStaffRequest(kv map[string]string) *model.UpdateStaffRequest {
	return &model.UpdateStaffRequest{
		Username:       kv["username"],
		Password:       kv["password"],
		FirstName:      kv["first_name"],
		LastName:       kv["last_name"],
		Email:          kv["email"],
		PhoneNumber:    kv["phone"],
		Role:           model.Role(kv["role"]),
		Status:         kv["status"],
		Specialization: kv["specialization"],
		LicenseNumber:  kv["license"],
	}
}

func buildCategoryRequest(kv map[string]string) *model.UpsertCategoryRequest {
	return &model.UpsertCategoryRequest{
		Name:        kv["name"],
		Description: kv["description"],
	}
}

func buildItemRequest(kv map[string]string) (*model.UpsertItemRequest, error) {
	req := &model.UpsertItemRequest{
		Code:         kv["code"],
		Name:         kv["name"],
		Unit:         kv["unit"],
		Manufacturer: kv["manufacturer"],
		Supplier:     kv["supplier"],
		Location:     kv["location"],
		Description:  kv["description"],
		IsActive:     true,
	}
	if v, ok := kv["category"]; ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("category: serve un id numerico")
		}
		req.CategoryID = id
	}
	if v, ok := kv["price"]; ok {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("price: serve un numero")
		}
		req.UnitPrice = price
	}
	if v, ok := kv["stock"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("stock: serve un numero intero")
		}
		req.CurrentStock = n
	}
	if v, ok := kv["min"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("min: serve un numero intero")
		}
		req.MinStock = n
	}
	if v, ok := kv["active"]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("active: serve true o false")
		}
		req.IsActive = b
	}
	return req, nil
}

func buildTransactionRequest(kv map[string]string) (*model.CreateTransactionRequest, error) {
	itemID, err := strconv.ParseInt(kv["item"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("item: serve un id numerico")
	}
	qty, err := strconv.Atoi(kv["qty"])
	if err != nil {
		return nil, fmt.Errorf("qty: serve un numero intero")
	}
	return &model.CreateTransactionRequest{
		ItemID:          itemID,
		TransactionType: model.TransactionType(kv["type"]),
		Quantity:        qty,
		Notes:           kv["notes"],
	}, nil
}

func buildProfileRequest(kv map[string]string) *model.UpdateProfileRequest {
	return &model.UpdateProfileRequest{
		FirstName:      kv["first_name"],
		LastName:       kv["last_name"],
		Email:          kv["email"],
		PhoneNumber:    kv["phone"],
		Specialization: kv["specialization"],
		LicenseNumber:  kv["license"],
	}
}

func errMessage(err error) string {
	var appErr *errors.AppError
	if goerrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func printHelp() {
	fmt.Println(`comandi:
  login <utente> <password>    accedi
  logout                       esci
  whoami                       utente corrente
  open <sezione>               attiva una sezione:
                               reports-section, staff-section, items-tab,
                               categories-tab, transactions-tab, inventory-stats
  search <testo>               filtra i report (debounce 500ms)
  date <yyyy-mm-dd>            filtra i report per data
  next / prev                  cambia pagina nella sezione attiva
  create-staff campo=valore    crea un membro staff (username, password,
                               first_name, last_name, role, email, phone,
                               status, specialization, license)
  update-staff <id> c=v ...    aggiorna un membro staff
  create-category c=v ...      crea una categoria (name, description)
  update-category <id> c=v     aggiorna una categoria
  create-item c=v ...          crea un prodotto (code, name, category, unit,
                               price, stock, min, manufacturer, supplier,
                               location, active, description)
  update-item <id> c=v ...     aggiorna un prodotto
  record-tx c=v ...            registra un movimento (item, type, qty, notes)
  change-password <id> <n> <c> cambia la password di un utente
  update-profile c=v ...       aggiorna il proprio profilo
  delete-report <patient-id>   elimina un report
  delete-staff <id>            elimina un membro staff
  delete-item <id>             elimina un prodotto
  delete-category <id>         elimina una categoria
  quit                         chiudi`)
}
