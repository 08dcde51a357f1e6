package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/cardhaus/cardhaus/internal/db"
	"github.com/cardhaus/cardhaus/internal/model"
	"github.com/cardhaus/cardhaus/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create partner account.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	store.CreateUser(ctx, database, "partner", string(hash), model.RolePartner, nil)

	return server, loginAs(t, server, "partner", "password")
}

func loginAs(t *testing.T, server *httptest.Server, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	json.NewDecoder(resp.Body).Decode(&loginResp)
	if loginResp.Token == "" {
		t.Fatal("empty token from login")
	}
	return loginResp.Token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// doJSON sends an authenticated request and decodes the response into out.
func doJSON(t *testing.T, method, url, token string, body, out any) int {
	t.Helper()
	req, err := authRequest(method, url, token, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"username": "partner", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogoutRevokesToken(t *testing.T) {
	server, token := setupTestServer(t)

	if status := doJSON(t, "POST", server.URL+"/api/auth/logout", token, nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200 for logout, got %d", status)
	}
	if status := doJSON(t, "GET", server.URL+"/api/stores", token, nil, nil); status != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", status)
	}
}

func TestStoresAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)

	var created model.Store
	status := doJSON(t, "POST", server.URL+"/api/stores", token, map[string]any{
		"name":         "Downtown",
		"address":      "1 Main St",
		"max_capacity": 100,
	}, &created)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}

	var stores []model.Store
	if status := doJSON(t, "GET", server.URL+"/api/stores", token, nil, &stores); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(stores) != 1 || stores[0].Name != "Downtown" {
		t.Errorf("unexpected store listing: %+v", stores)
	}

	var capacity map[string]float64
	doJSON(t, "GET", server.URL+"/api/stores/"+created.ID+"/capacity", token, nil, &capacity)
	if capacity["max_capacity"] != 100 || capacity["computed"] != 0 {
		t.Errorf("unexpected capacity payload: %v", capacity)
	}

	// Unknown id maps to 404, malformed input to 400.
	ghost := "00000000-0000-0000-0000-000000000000"
	if status := doJSON(t, "GET", server.URL+"/api/stores/"+ghost, token, nil, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 for unknown store, got %d", status)
	}
	if status := doJSON(t, "POST", server.URL+"/api/stores", token, map[string]any{
		"name": "Bad", "max_capacity": -1,
	}, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for negative capacity, got %d", status)
	}
}

func TestInventoryAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)

	var s model.Store
	doJSON(t, "POST", server.URL+"/api/stores", token, map[string]any{
		"name": "Downtown", "max_capacity": 10,
	}, &s)

	var p model.Product
	status := doJSON(t, "POST", server.URL+"/api/products", token, map[string]any{
		"sku": "SLV-1", "name": "Sleeves", "product_type": model.ProductSleeves, "unit_size": 2,
	}, &p)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 for product, got %d", status)
	}

	// First placement creates.
	var createResp struct {
		Record *model.InventoryRecord `json:"record"`
		Merged bool                   `json:"merged"`
	}
	status = doJSON(t, "POST", server.URL+"/api/inventory", token, map[string]any{
		"store_id": s.ID, "product_id": p.ID, "quantity": 3, "location": model.LocationFloor,
	}, &createResp)
	if status != http.StatusCreated || createResp.Merged {
		t.Fatalf("expected 201 create, got %d merged=%v", status, createResp.Merged)
	}

	// Second placement at the same spot merges and reports 200.
	status = doJSON(t, "POST", server.URL+"/api/inventory", token, map[string]any{
		"store_id": s.ID, "product_id": p.ID, "quantity": 2, "location": model.LocationFloor,
	}, &createResp)
	if status != http.StatusOK || !createResp.Merged {
		t.Fatalf("expected 200 merge, got %d merged=%v", status, createResp.Merged)
	}
	if createResp.Record.Quantity != 5 {
		t.Errorf("expected merged quantity 5, got %d", createResp.Record.Quantity)
	}

	// The store is full now (5 × 2 = 10): capacity violations map to 400.
	var errResp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	status = doJSON(t, "POST", server.URL+"/api/inventory", token, map[string]any{
		"store_id": s.ID, "product_id": p.ID, "quantity": 1, "location": model.LocationBack,
	}, &errResp)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for capacity violation, got %d", status)
	}
	if errResp.Success || errResp.Message == "" {
		t.Errorf("unexpected error payload: %+v", errResp)
	}
}

func TestTransferAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)

	var from, to model.Store
	doJSON(t, "POST", server.URL+"/api/stores", token, map[string]any{
		"name": "Downtown", "max_capacity": 100,
	}, &from)
	doJSON(t, "POST", server.URL+"/api/stores", token, map[string]any{
		"name": "Mall", "max_capacity": 100,
	}, &to)

	var p model.Product
	doJSON(t, "POST", server.URL+"/api/products", token, map[string]any{
		"sku": "SLV-1", "name": "Sleeves", "product_type": model.ProductSleeves, "unit_size": 2,
	}, &p)

	var createResp struct {
		Record *model.InventoryRecord `json:"record"`
	}
	doJSON(t, "POST", server.URL+"/api/inventory", token, map[string]any{
		"store_id": from.ID, "product_id": p.ID, "quantity": 10, "location": model.LocationFloor,
	}, &createResp)

	var req model.TransferRequest
	status := doJSON(t, "POST", server.URL+"/api/transfers", token, map[string]any{
		"from_store_id": from.ID,
		"to_store_id":   to.ID,
		"items": []map[string]any{
			{"inventory_id": createResp.Record.ID, "requested_quantity": 4},
		},
	}, &req)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 for transfer, got %d", status)
	}
	if req.Status != model.TransferOpen || req.RequestNumber == "" {
		t.Errorf("unexpected new transfer: %+v", req)
	}

	// Skipping a step maps to 400.
	statusURL := fmt.Sprintf("%s/api/transfers/%s/status", server.URL, req.ID)
	if status := doJSON(t, "PATCH", statusURL, token, map[string]string{"status": model.TransferSent}, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for skipped transition, got %d", status)
	}

	// Walk the happy path.
	for _, next := range []string{model.TransferRequested, model.TransferSent, model.TransferComplete} {
		if status := doJSON(t, "PATCH", statusURL, token, map[string]string{"status": next}, &req); status != http.StatusOK {
			t.Fatalf("expected 200 moving to %s, got %d", next, status)
		}
	}
	if req.Status != model.TransferComplete || len(req.History) != 4 {
		t.Errorf("unexpected completed transfer: status=%s history=%d", req.Status, len(req.History))
	}

	// Destination received the stock.
	var destInv []model.InventoryRecord
	doJSON(t, "GET", server.URL+"/api/stores/"+to.ID+"/inventory", token, nil, &destInv)
	if len(destInv) != 1 || destInv[0].Quantity != 4 {
		t.Errorf("unexpected destination inventory: %+v", destInv)
	}

	// Filtered listing.
	var listed []model.TransferRequest
	doJSON(t, "GET", server.URL+"/api/transfers?status="+model.TransferComplete, token, nil, &listed)
	if len(listed) != 1 {
		t.Errorf("expected 1 completed transfer listed, got %d", len(listed))
	}
}

func TestTransferRoleEnforcement(t *testing.T) {
	server, token := setupTestServer(t)

	var from, to model.Store
	doJSON(t, "POST", server.URL+"/api/stores", token, map[string]any{
		"name": "Downtown", "max_capacity": 100,
	}, &from)
	doJSON(t, "POST", server.URL+"/api/stores", token, map[string]any{
		"name": "Mall", "max_capacity": 100,
	}, &to)

	var p model.Product
	doJSON(t, "POST", server.URL+"/api/products", token, map[string]any{
		"sku": "SLV-1", "name": "Sleeves", "product_type": model.ProductSleeves, "unit_size": 2,
	}, &p)
	var createResp struct {
		Record *model.InventoryRecord `json:"record"`
	}
	doJSON(t, "POST", server.URL+"/api/inventory", token, map[string]any{
		"store_id": from.ID, "product_id": p.ID, "quantity": 10, "location": model.LocationFloor,
	}, &createResp)

	// A manager attached only to the source store.
	doJSON(t, "POST", server.URL+"/api/users", token, map[string]any{
		"username": "sender", "password": "password1", "role": model.RoleManager,
		"store_ids": []string{from.ID},
	}, nil)
	senderToken := loginAs(t, server, "sender", "password1")

	var req model.TransferRequest
	doJSON(t, "POST", server.URL+"/api/transfers", token, map[string]any{
		"from_store_id": from.ID,
		"to_store_id":   to.ID,
		"items": []map[string]any{
			{"inventory_id": createResp.Record.ID, "requested_quantity": 2},
		},
	}, &req)

	// The source-side manager may not request (destination acts there): 403.
	statusURL := fmt.Sprintf("%s/api/transfers/%s/status", server.URL, req.ID)
	if status := doJSON(t, "PATCH", statusURL, senderToken, map[string]string{"status": model.TransferRequested}, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 for source manager requesting, got %d", status)
	}

	// And may not delete the request either.
	if status := doJSON(t, "DELETE", server.URL+"/api/transfers/"+req.ID, senderToken, nil, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 for manager delete, got %d", status)
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, _ := http.Get(server.URL + "/api/stores")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated request, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRoleBasedAccess(t *testing.T) {
	server, token := setupTestServer(t)

	doJSON(t, "POST", server.URL+"/api/users", token, map[string]any{
		"username": "clerk", "password": "password1", "role": model.RoleEmployee,
	}, nil)
	clerkToken := loginAs(t, server, "clerk", "password1")

	// Employees read but do not write stores.
	if status := doJSON(t, "GET", server.URL+"/api/stores", clerkToken, nil, nil); status != http.StatusOK {
		t.Errorf("expected 200 for employee listing stores, got %d", status)
	}
	if status := doJSON(t, "POST", server.URL+"/api/stores", clerkToken, map[string]any{
		"name": "Popup", "max_capacity": 10,
	}, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 for employee creating store, got %d", status)
	}

	// User management is partner-only.
	if status := doJSON(t, "GET", server.URL+"/api/users", clerkToken, nil, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 for employee accessing users, got %d", status)
	}
}

func TestChangePassword(t *testing.T) {
	server, token := setupTestServer(t)

	status := doJSON(t, "PUT", server.URL+"/api/auth/password", token, map[string]string{
		"current_password": "password",
		"new_password":     "short",
	}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for short password, got %d", status)
	}

	status = doJSON(t, "PUT", server.URL+"/api/auth/password", token, map[string]string{
		"current_password": "password",
		"new_password":     "longenough",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for password change, got %d", status)
	}

	loginAs(t, server, "partner", "longenough")
}
