// Package main provides a CLI tool for seeding the database with demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	appctx "globalerp/internal/core/context"
	"globalerp/internal/core/id"
	"globalerp/internal/core/types"
	"globalerp/internal/domain/catalogs/localisation"
	"globalerp/internal/domain/catalogs/partner"
	"globalerp/internal/domain/catalogs/product"
	"globalerp/internal/domain/catalogs/store"
	"globalerp/internal/domain/catalogs/tax"
	"globalerp/internal/domain/documents"
	"globalerp/internal/domain/movement"
	"globalerp/internal/domain/registers/inventory"
	"globalerp/internal/infrastructure/storage/postgres"
	"globalerp/internal/infrastructure/storage/postgres/catalog_repo"
	"globalerp/internal/infrastructure/storage/postgres/document_repo"
	"globalerp/internal/infrastructure/storage/postgres/register_repo"
	"globalerp/pkg/logger"
	"globalerp/pkg/numerator"
)

// services bundles everything the seeder needs.
type services struct {
	localisations *localisation.Service
	stores        *store.Service
	categories    *product.CategoryService
	products      *product.Service
	taxes         *tax.Service
	partners      *partner.Service
	inventory     *inventory.Service
	documents     *documents.Service
	movements     *movement.Service
	valuation     *documents.Engine
}

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: os.Getenv("ENV") != "production",
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	ctx = appctx.WithActor(ctx, getEnv("SEED_ACTOR", "seeder"))

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	svc, err := wire(pool)
	if err != nil {
		log.Fatalw("failed to wire services", "error", err)
	}

	if err := seedDemoData(ctx, svc); err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	log.Info("seeding completed successfully")
}

func wire(pool *postgres.Pool) (*services, error) {
	txm := postgres.NewTxManager(pool)
	numbers := numerator.New(pool.Pool)

	auditSvc, err := postgres.NewAuditService(txm)
	if err != nil {
		return nil, fmt.Errorf("create audit service: %w", err)
	}
	auditor := auditRecorder{svc: auditSvc}

	localisationRepo := catalog_repo.NewLocalisationRepo(txm)
	storeRepo := catalog_repo.NewStoreRepo(txm)
	categoryRepo := catalog_repo.NewProductCategoryRepo(txm)
	productRepo := catalog_repo.NewProductRepo(txm)
	taxRepo := catalog_repo.NewTaxRepo(txm)
	partnerRepo := catalog_repo.NewPartnerRepo(txm)
	inventoryRepo := register_repo.NewInventoryRepo(txm)
	documentRepo := document_repo.NewDocumentRepo(txm)
	movementRepo := document_repo.NewMovementRepo(txm)

	products := product.NewService(productRepo, txm, numbers)
	taxes := tax.NewService(taxRepo, txm, numbers)
	partners := partner.NewService(partnerRepo, txm, numbers)
	inventorySvc := inventory.NewService(inventoryRepo)

	return &services{
		localisations: localisation.NewService(localisationRepo, txm, numbers),
		stores:        store.NewService(storeRepo, txm, numbers),
		categories:    product.NewCategoryService(categoryRepo, txm, numbers),
		products:      products,
		taxes:         taxes,
		partners:      partners,
		inventory:     inventorySvc,
		documents:     documents.NewService(documentRepo, txm, numbers, auditor),
		movements: movement.NewService(
			movementRepo, documentRepo, txm, numbers,
			inventorySvc, products, partners, auditor,
		),
		valuation: documents.NewEngine(products, taxes),
	}, nil
}

// auditRecorder adapts the postgres audit service to the domain
// recorder interface.
type auditRecorder struct {
	svc *postgres.AuditService
}

func (a auditRecorder) LogChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error {
	return a.svc.LogChange(ctx, entityType, entityID, postgres.AuditAction(action), changes)
}

func seedDemoData(ctx context.Context, svc *services) error {
	// 1. Localisation hierarchy: centre > region > secteur > zone
	centre := localisation.NewLocalisation("CTR-DLA", "Centre Littoral", localisation.KindCentre, nil)
	if err := svc.localisations.Create(ctx, centre); err != nil {
		return fmt.Errorf("seed centre: %w", err)
	}
	region := localisation.NewLocalisation("REG-DLA-01", "Douala", localisation.KindRegion, &centre.ID)
	if err := svc.localisations.Create(ctx, region); err != nil {
		return fmt.Errorf("seed region: %w", err)
	}
	secteur := localisation.NewLocalisation("SEC-AKWA", "Akwa", localisation.KindSecteur, &region.ID)
	if err := svc.localisations.Create(ctx, secteur); err != nil {
		return fmt.Errorf("seed secteur: %w", err)
	}
	zone := localisation.NewLocalisation("ZON-AKWA-N", "Akwa Nord", localisation.KindZone, &secteur.ID)
	if err := svc.localisations.Create(ctx, zone); err != nil {
		return fmt.Errorf("seed zone: %w", err)
	}

	// 2. Store
	depot := store.NewStore("STR-AKWA-01", "Depot Akwa", zone.ID)
	depot.Address = "Rue Joffre, Akwa, Douala"
	if err := svc.stores.Create(ctx, depot); err != nil {
		return fmt.Errorf("seed store: %w", err)
	}

	// 3. Product categories and products
	dairy := product.NewProductCategory("CAT-DAIRY", "Produits laitiers")
	if err := svc.categories.Create(ctx, dairy); err != nil {
		return fmt.Errorf("seed dairy category: %w", err)
	}
	juices := product.NewProductCategory("CAT-JUICE", "Jus et boissons")
	if err := svc.categories.Create(ctx, juices); err != nil {
		return fmt.Errorf("seed juice category: %w", err)
	}

	type productSeed struct {
		code     string
		name     string
		category id.ID
		price    string
		cost     string
		unit     string
	}

	seeds := []productSeed{
		{"PRD-YAO-125", "Yaourt nature 125ml", dairy.ID, "500", "350", "sachet"},
		{"PRD-YAO-500", "Yaourt sucre 500ml", dairy.ID, "1200", "800", "pot"},
		{"PRD-LAIT-1L", "Lait frais 1L", dairy.ID, "900", "600", "litre"},
		{"PRD-JUS-ANA", "Jus d'ananas 300ml", juices.ID, "300", "210", "bouteille"},
	}

	productIDs := make(map[string]id.ID, len(seeds))
	for _, ps := range seeds {
		p := product.NewProduct(ps.code, ps.name, ps.category)
		p.DefaultUnitPrice = types.MustMoney(ps.price)
		p.UnitCost = types.MustMoney(ps.cost)
		p.Unit = ps.unit
		p.Perishable = ps.category == dairy.ID
		if err := svc.products.Create(ctx, p); err != nil {
			return fmt.Errorf("seed product %s: %w", ps.code, err)
		}
		productIDs[ps.code] = p.ID
	}

	// 4. Taxes: VAT on everything, excise restricted to dairy
	vat := tax.NewTax("TAX-VAT", "TVA", types.MustRate("0.1925"))
	if err := svc.taxes.Create(ctx, vat); err != nil {
		return fmt.Errorf("seed vat: %w", err)
	}
	excise := tax.NewTax("TAX-EXC", "Droit d'accise laitier", types.MustRate("0.05"))
	excise.CategoryIDs = []id.ID{dairy.ID}
	if err := svc.taxes.Create(ctx, excise); err != nil {
		return fmt.Errorf("seed excise: %w", err)
	}

	// 5. Partners, including the designated cash client
	marginClient := partner.NewPartner("MCL-00001", "Superette Bonanjo", partner.KindMarginClient)
	marginClient.MarginLines = []partner.MarginLine{
		{
			ID:        id.New(),
			PartnerID: marginClient.ID,
			ProductID: productIDs["PRD-YAO-125"],
			Margin:    types.MustMoney("50"),
		},
	}
	if err := svc.partners.Create(ctx, marginClient); err != nil {
		return fmt.Errorf("seed margin client: %w", err)
	}

	seller := partner.NewPartner("SEL-00001", "Vendeur Akwa Nord", partner.KindSeller)
	seller.FixedAssets = []partner.FixedAsset{
		{
			ID:         id.New(),
			PartnerID:  seller.ID,
			Name:       "Glaciere 40L",
			Value:      types.MustMoney("25000"),
			AssignedAt: time.Now().UTC(),
		},
	}
	if err := svc.partners.Create(ctx, seller); err != nil {
		return fmt.Errorf("seed seller: %w", err)
	}

	cashClient := partner.NewPartner("CSH-00001", "Client comptant", partner.KindCashClient)
	if err := svc.partners.Create(ctx, cashClient); err != nil {
		return fmt.Errorf("seed cash client: %w", err)
	}

	// 6. Inventory snapshot for the store
	now := time.Now().UTC()
	positions := []inventory.Position{
		{ID: id.New(), StoreID: depot.ID, ProductID: productIDs["PRD-YAO-125"], Available: types.MustQuantity("10"), ObservedAt: now},
		{ID: id.New(), StoreID: depot.ID, ProductID: productIDs["PRD-JUS-ANA"], Available: types.MustQuantity("0"), ObservedAt: now},
	}
	if err := svc.inventory.Record(ctx, depot.ID, positions); err != nil {
		return fmt.Errorf("record inventory: %w", err)
	}

	// 7. Daily movement with an inbound receipt and raw entries
	receipt := documents.NewDocument(documents.Inbound, depot.ID)
	receipt.AddLine(productIDs["PRD-LAIT-1L"], types.MustMoney("600"), types.MustQuantity("40"))

	m := movement.NewDailyMovement(depot.ID, now)
	m.AttachDocument(receipt)
	m.AddEntry(receipt.ID, productIDs["PRD-YAO-500"], types.MustMoney("800"), types.MustQuantity("20"))

	m, err := svc.movements.Add(ctx, m)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}

	if _, err := svc.movements.BuildDetails(ctx, m.ID); err != nil {
		return fmt.Errorf("build movement details: %w", err)
	}

	// 8. Cash-sale synthesis from the snapshot
	cashSale, err := svc.movements.GenerateCashSales(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("generate cash sales: %w", err)
	}
	if cashSale != nil {
		total, err := svc.valuation.ValueWithTaxes(ctx, cashSale)
		if err != nil {
			return fmt.Errorf("value cash sale: %w", err)
		}
		margin, err := svc.valuation.MarginValue(ctx, cashSale)
		if err != nil {
			return fmt.Errorf("margin cash sale: %w", err)
		}
		logger.Info(ctx, "cash sale document seeded",
			"number", cashSale.Number,
			"lines", len(cashSale.Lines),
			"valueWithTaxes", total.String(),
			"margin", margin.String())
	}

	logger.Info(ctx, "demo data seeded successfully")
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
