package main

import (
	"net/http"

	"bookameal/internal/clock"
	"bookameal/internal/dal"
	"bookameal/internal/handler"
	"bookameal/internal/middleware"
	"bookameal/internal/service"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type handlers struct {
	orders    *handler.OrderHandler
	meals     *handler.MealHandler
	menus     *handler.MenuHandler
	inventory *handler.InventoryHandler
	reports   *handler.ReportHandler
}

func newHandlers(catalog dal.Catalog, c clock.Clock, logger *zap.Logger, tracer trace.Tracer) handlers {
	ledger := service.NewLedger(c, tracer)

	orderService := service.NewOrderService(catalog, catalog, ledger, service.OwnerGuard{}, logger, tracer)
	mealService := service.NewMealService(catalog)
	menuService := service.NewMenuService(catalog, catalog, catalog, c)
	inventoryService := service.NewInventoryService(catalog, catalog, ledger)
	reportService := service.NewReportService(catalog, logger)

	return handlers{
		orders:    handler.NewOrderHandler(orderService, logger),
		meals:     handler.NewMealHandler(mealService, logger),
		menus:     handler.NewMenuHandler(menuService, logger),
		inventory: handler.NewInventoryHandler(inventoryService, logger),
		reports:   handler.NewReportHandler(reportService, logger),
	}
}

func NewRouter(h handlers, logger *zap.Logger, tracer trace.Tracer) http.Handler {
	mux := http.NewServeMux()

	// Order routes
	mux.HandleFunc("POST /api/v1/orders", h.orders.CreateOrder)
	mux.HandleFunc("GET /api/v1/orders", h.orders.ListOrders)
	mux.HandleFunc("GET /api/v1/orders/{id}", h.orders.GetOrder)
	mux.HandleFunc("PUT /api/v1/orders/{id}", h.orders.UpdateOrder)
	mux.HandleFunc("PATCH /api/v1/orders/{id}", h.orders.UpdateOrder)
	mux.HandleFunc("DELETE /api/v1/orders/{id}", h.orders.DeleteOrder)

	// Meal routes
	mux.HandleFunc("POST /api/v1/meals", h.meals.CreateMeal)
	mux.HandleFunc("GET /api/v1/meals", h.meals.ListMeals)
	mux.HandleFunc("GET /api/v1/meals/{id}", h.meals.GetMeal)
	mux.HandleFunc("PUT /api/v1/meals/{id}", h.meals.UpdateMeal)
	mux.HandleFunc("DELETE /api/v1/meals/{id}", h.meals.DeleteMeal)

	// Menu routes
	mux.HandleFunc("POST /api/v1/menus", h.menus.CreateMenu)
	mux.HandleFunc("GET /api/v1/menus", h.menus.ListMenus)
	mux.HandleFunc("GET /api/v1/menus/{id}", h.menus.GetMenu)
	mux.HandleFunc("DELETE /api/v1/menus/{id}", h.menus.DeleteMenu)
	mux.HandleFunc("GET /api/v1/menus/{id}/items", h.menus.ListMenuItems)
	mux.HandleFunc("POST /api/v1/menu-items", h.menus.CreateMenuItem)
	mux.HandleFunc("GET /api/v1/menu-items/{id}", h.menus.GetMenuItem)
	mux.HandleFunc("GET /api/v1/menu-items/{id}/availability", h.inventory.CheckAvailability)

	// Report routes
	mux.HandleFunc("GET /api/v1/reports/stock", h.reports.GetStockReport)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return middleware.Chain(mux,
		middleware.Logging(logger, tracer),
		middleware.Recovery(logger),
		middleware.Authenticate,
	)
}
