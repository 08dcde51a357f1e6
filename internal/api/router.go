package api

import (
	"database/sql"
	"net/http"

	"github.com/cardhaus/cardhaus/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	storesHandler := &StoresHandler{DB: db}
	productsHandler := &ProductsHandler{DB: db}
	inventoryHandler := &InventoryHandler{DB: db}
	transfersHandler := &TransfersHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requirePartner := RequireRole(model.RolePartner)
	requireManager := RequireRole(model.RoleManager)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (partner only).
	mux.Handle("GET /api/users", authMW(requirePartner(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requirePartner(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requirePartner(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requirePartner(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requirePartner(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requirePartner(http.HandlerFunc(usersHandler.Delete))))

	// Stores: read (all roles), write (manager+).
	mux.Handle("GET /api/stores", authMW(http.HandlerFunc(storesHandler.List)))
	mux.Handle("POST /api/stores", authMW(requireManager(http.HandlerFunc(storesHandler.Create))))
	mux.Handle("GET /api/stores/{id}", authMW(http.HandlerFunc(storesHandler.Get)))
	mux.Handle("PUT /api/stores/{id}", authMW(requireManager(http.HandlerFunc(storesHandler.Update))))
	mux.Handle("DELETE /api/stores/{id}", authMW(requireManager(http.HandlerFunc(storesHandler.Delete))))
	mux.Handle("GET /api/stores/{id}/inventory", authMW(http.HandlerFunc(storesHandler.GetInventory)))
	mux.Handle("GET /api/stores/{id}/capacity", authMW(http.HandlerFunc(storesHandler.GetCapacity)))

	// Products: read (all roles), write (manager+).
	mux.Handle("GET /api/products", authMW(http.HandlerFunc(productsHandler.List)))
	mux.Handle("POST /api/products", authMW(requireManager(http.HandlerFunc(productsHandler.Create))))
	mux.Handle("GET /api/products/{id}", authMW(http.HandlerFunc(productsHandler.Get)))
	mux.Handle("PUT /api/products/{id}", authMW(requireManager(http.HandlerFunc(productsHandler.Update))))
	mux.Handle("DELETE /api/products/{id}", authMW(requireManager(http.HandlerFunc(productsHandler.Delete))))
	mux.Handle("PUT /api/products/{id}/image", authMW(requireManager(http.HandlerFunc(productsHandler.UploadImage))))
	mux.Handle("GET /api/products/{id}/image", authMW(http.HandlerFunc(productsHandler.GetImage)))

	// Inventory: read (all roles), write (manager+).
	mux.Handle("POST /api/inventory", authMW(requireManager(http.HandlerFunc(inventoryHandler.Create))))
	mux.Handle("POST /api/inventory/containers", authMW(requireManager(http.HandlerFunc(inventoryHandler.CreateContainer))))
	mux.Handle("POST /api/inventory/check-duplicate", authMW(http.HandlerFunc(inventoryHandler.CheckDuplicate)))
	mux.Handle("GET /api/inventory/{id}", authMW(http.HandlerFunc(inventoryHandler.Get)))
	mux.Handle("PUT /api/inventory/{id}", authMW(requireManager(http.HandlerFunc(inventoryHandler.Update))))
	mux.Handle("DELETE /api/inventory/{id}", authMW(requireManager(http.HandlerFunc(inventoryHandler.Delete))))

	// Transfers: role checks happen per-transition in the store layer.
	mux.Handle("POST /api/transfers", authMW(http.HandlerFunc(transfersHandler.Create)))
	mux.Handle("GET /api/transfers", authMW(http.HandlerFunc(transfersHandler.List)))
	mux.Handle("GET /api/transfers/{id}", authMW(http.HandlerFunc(transfersHandler.Get)))
	mux.Handle("PATCH /api/transfers/{id}/status", authMW(http.HandlerFunc(transfersHandler.UpdateStatus)))
	mux.Handle("DELETE /api/transfers/{id}", authMW(http.HandlerFunc(transfersHandler.Delete)))

	return mux
}
