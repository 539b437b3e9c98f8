// Package http wires handlers, middleware and routes into the API server.
package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"stayops-backend/internal/auth"
	"stayops-backend/internal/handlers"
	"stayops-backend/internal/health"
	"stayops-backend/internal/middleware"
	"stayops-backend/internal/ws"
)

type RouterDeps struct {
	Tokens *auth.TokenManager
	Hub    *ws.Hub

	Auth       *handlers.AuthHandler
	Users      *handlers.UserHandler
	Properties *handlers.PropertyHandler
	Supplies   *handlers.SupplyItemHandler
	Tasks      *handlers.TaskHandler
	Inventory  *handlers.InventoryHandler
	Leads      *handlers.LeadHandler
	Reports    *handlers.MaintenanceReportHandler
	Health     *health.Handler

	CORSOrigins []string
}

// NewRouter builds the full route table. Everything under /api except
// login requires a valid token. Fine-grained role gates live in the
// services; the router additionally fences off user administration
// behind the manager check.
func NewRouter(d RouterDeps) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Recover, middleware.Metrics)

	r.HandleFunc("/health", d.Health.Live).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", d.Health.Ready).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", d.Auth.Login).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.Authenticate(d.Tokens))

	admin := protected.PathPrefix("/users").Subrouter()
	admin.Use(middleware.RequireManager)
	admin.HandleFunc("", d.Users.Create).Methods(http.MethodPost)
	admin.HandleFunc("", d.Users.List).Methods(http.MethodGet)
	admin.HandleFunc("/{id}", d.Users.Get).Methods(http.MethodGet)
	admin.HandleFunc("/{id}", d.Users.Update).Methods(http.MethodPut)

	protected.HandleFunc("/properties", d.Properties.Create).Methods(http.MethodPost)
	protected.HandleFunc("/properties", d.Properties.List).Methods(http.MethodGet)
	protected.HandleFunc("/properties/{id}", d.Properties.Get).Methods(http.MethodGet)
	protected.HandleFunc("/properties/{id}", d.Properties.Update).Methods(http.MethodPut)
	protected.HandleFunc("/properties/{id}", d.Properties.Deactivate).Methods(http.MethodDelete)

	protected.HandleFunc("/supply-items", d.Supplies.Create).Methods(http.MethodPost)
	protected.HandleFunc("/supply-items", d.Supplies.List).Methods(http.MethodGet)
	protected.HandleFunc("/supply-items/{id}", d.Supplies.Get).Methods(http.MethodGet)
	protected.HandleFunc("/supply-items/{id}", d.Supplies.Update).Methods(http.MethodPut)
	protected.HandleFunc("/supply-items/{id}", d.Supplies.Deactivate).Methods(http.MethodDelete)

	protected.HandleFunc("/tasks", d.Tasks.Create).Methods(http.MethodPost)
	protected.HandleFunc("/tasks", d.Tasks.List).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/{id}", d.Tasks.Get).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/{id}", d.Tasks.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/tasks/{id}/notes", d.Tasks.UpdateNotes).Methods(http.MethodPut)
	protected.HandleFunc("/tasks/{id}/start", d.Tasks.Start).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/{id}/checklist", d.Tasks.MutateChecklist).Methods(http.MethodPatch)
	protected.HandleFunc("/tasks/{id}/complete", d.Tasks.Complete).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/{id}/approve", d.Tasks.Approve).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/{id}/reject", d.Tasks.Reject).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/{id}/reopen", d.Tasks.Reopen).Methods(http.MethodPost)

	protected.HandleFunc("/inventory/balances", d.Inventory.Balances).Methods(http.MethodGet)
	protected.HandleFunc("/inventory/items/{id}/history", d.Inventory.History).Methods(http.MethodGet)
	protected.HandleFunc("/inventory/items/{id}/reorder-point", d.Inventory.SetReorderPoint).Methods(http.MethodPut)
	protected.HandleFunc("/inventory/items/{id}/reconcile", d.Inventory.Reconcile).Methods(http.MethodGet)
	protected.HandleFunc("/inventory/adjust", d.Inventory.Adjust).Methods(http.MethodPost)
	protected.HandleFunc("/inventory/purchase", d.Inventory.ReceivePurchase).Methods(http.MethodPost)
	protected.HandleFunc("/inventory/export", d.Inventory.Export).Methods(http.MethodPost)

	protected.HandleFunc("/leads", d.Leads.Create).Methods(http.MethodPost)
	protected.HandleFunc("/leads", d.Leads.List).Methods(http.MethodGet)
	protected.HandleFunc("/leads/{id}", d.Leads.Get).Methods(http.MethodGet)
	protected.HandleFunc("/leads/{id}/status", d.Leads.UpdateStatus).Methods(http.MethodPut)

	protected.HandleFunc("/maintenance-reports", d.Reports.Create).Methods(http.MethodPost)
	protected.HandleFunc("/maintenance-reports", d.Reports.List).Methods(http.MethodGet)
	protected.HandleFunc("/maintenance-reports/{id}", d.Reports.Get).Methods(http.MethodGet)
	protected.HandleFunc("/maintenance-reports/{id}/status", d.Reports.UpdateStatus).Methods(http.MethodPut)

	if d.Hub != nil {
		r.HandleFunc("/ws", d.Hub.HandleWS)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
