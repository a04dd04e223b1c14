package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"farm-livestock-history/internal/platform/logger"
	"farm-livestock-history/internal/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier: nil, // modo dev: X-Debug-User-ID / X-Debug-Role
		Logger:       logger.Nop(),
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_OfflineSyncRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	userID := "user-1"

	// 1) Push del backlog offline: dos animales y un reintento duplicado
	st, body := doReq(t, ts.URL, "POST", "/sync/batch", userID, "user", map[string]any{
		"operations": []map[string]any{
			{
				"table": "animals", "action": "INSERT", "recordId": "local-1",
				"data": map[string]any{
					"tag_code": "CHIP-001", "birth_weight_kg": 31.0,
					"breed_id": 1, "birth_date": "2024-01-15",
				},
			},
			{
				"table": "animals", "action": "INSERT", "recordId": "local-2",
				"data": map[string]any{
					"tag_code": "CHIP-002", "birth_weight_kg": 28.5,
					"breed_id": 999, "birth_date": "2024-02-20",
				},
			},
			{
				"table": "animals", "action": "INSERT", "recordId": "local-1",
				"data": map[string]any{
					"tag_code": "CHIP-001", "birth_weight_kg": 31.0,
					"breed_id": 1, "birth_date": "2024-01-15",
				},
			},
		},
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 batch, got %d body=%s", st, string(body))
	}

	var batch struct {
		Success      bool `json:"success"`
		SuccessCount int  `json:"successCount"`
		FailCount    int  `json:"failCount"`
		Results      []struct {
			Success    bool   `json:"success"`
			ServerID   string `json:"serverId"`
			LocalID    string `json:"localId"`
			ExistingID string `json:"existingId"`
		} `json:"results"`
	}
	mustUnmarshal(t, body, &batch)

	if !batch.Success || batch.SuccessCount != 2 || batch.FailCount != 1 {
		t.Fatalf("unexpected batch outcome: %+v body=%s", batch, string(body))
	}
	if batch.Results[0].LocalID != "local-1" || batch.Results[0].ServerID == "" {
		t.Fatalf("missing id remap in first result: %+v", batch.Results[0])
	}
	if batch.Results[2].Success || batch.Results[2].ExistingID != batch.Results[0].ServerID {
		t.Fatalf("duplicate insert should fail with existing id: %+v", batch.Results[2])
	}

	animalID := batch.Results[0].ServerID

	// 2) Pull completo: ambos animales, la raza inválida cayó al centinela
	st, body = doReq(t, ts.URL, "GET", "/sync/animals", userID, "user", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 pull animals, got %d body=%s", st, string(body))
	}

	var pull struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
		Records []struct {
			TagCode   string `json:"tag_code"`
			BreedID   int64  `json:"breed_id"`
			BreedName string `json:"breed_name"`
			UpdatedAt string `json:"updated_at"`
		} `json:"records"`
	}
	mustUnmarshal(t, body, &pull)
	if pull.Count != 2 {
		t.Fatalf("expected 2 animals in pull, got %d body=%s", pull.Count, string(body))
	}
	for _, rec := range pull.Records {
		if rec.TagCode == "CHIP-002" && (rec.BreedID != 25 || rec.BreedName != "Otra Raza") {
			t.Fatalf("expected sentinel breed for CHIP-002, got %+v", rec)
		}
	}

	// 3) Los pesajes de nacimiento implícitos existen
	st, body = doReq(t, ts.URL, "GET", "/sync/weights", userID, "user", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 pull weights, got %d body=%s", st, string(body))
	}
	var wpull struct {
		Count int `json:"count"`
	}
	mustUnmarshal(t, body, &wpull)
	if wpull.Count != 2 {
		t.Fatalf("expected 2 birth weights, got %d body=%s", wpull.Count, string(body))
	}

	// 4) Pull incremental con marca de agua: nada nuevo
	since := pull.Records[len(pull.Records)-1].UpdatedAt
	st, body = doReq(t, ts.URL, "GET", "/sync/animals?since="+since, userID, "user", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 incremental pull, got %d body=%s", st, string(body))
	}
	var delta struct {
		Count int `json:"count"`
	}
	mustUnmarshal(t, body, &delta)
	if delta.Count != 0 {
		t.Fatalf("expected empty delta, got %d body=%s", delta.Count, string(body))
	}

	// 5) Baja lógica por sync: desaparece del feed
	st, body = doReq(t, ts.URL, "POST", "/sync/batch", userID, "user", map[string]any{
		"operations": []map[string]any{
			{"table": "animals", "action": "DELETE", "recordId": animalID},
		},
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 delete batch, got %d body=%s", st, string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/sync/animals", userID, "user", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 pull after delete, got %d", st)
	}
	mustUnmarshal(t, body, &pull)
	if pull.Count != 1 {
		t.Fatalf("expected 1 active animal after soft delete, got %d", pull.Count)
	}

	// 6) Las rutas CRUD ven lo mismo que el sync
	st, body = doReq(t, ts.URL, "GET", "/animals", userID, "user", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list animals, got %d body=%s", st, string(body))
	}
	var crudList []struct {
		TagCode string `json:"tag_code"`
	}
	mustUnmarshal(t, body, &crudList)
	if len(crudList) != 1 || crudList[0].TagCode != "CHIP-002" {
		t.Fatalf("CRUD list out of sync with feed: %s", string(body))
	}
}

func TestHTTP_Sync_TenantIsolation(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "POST", "/sync/batch", "user-a", "user", map[string]any{
		"operations": []map[string]any{
			{
				"table": "animals", "action": "INSERT", "recordId": "l1",
				"data": map[string]any{
					"tag_code": "CHIP-A", "birth_weight_kg": 30.0,
					"breed_id": 1, "birth_date": "2024-01-01",
				},
			},
		},
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", st, string(body))
	}

	// user-b no ve los animales de user-a
	st, body = doReq(t, ts.URL, "GET", "/sync/animals", "user-b", "user", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d", st)
	}
	var pull struct {
		Count int `json:"count"`
	}
	mustUnmarshal(t, body, &pull)
	if pull.Count != 0 {
		t.Fatalf("tenant leak: user-b sees %d records", pull.Count)
	}

	// pero el chip es clave natural por usuario: user-b puede registrar
	// su propio CHIP-A
	st, body = doReq(t, ts.URL, "POST", "/sync/batch", "user-b", "user", map[string]any{
		"operations": []map[string]any{
			{
				"table": "animals", "action": "INSERT", "recordId": "l1",
				"data": map[string]any{
					"tag_code": "CHIP-A", "birth_weight_kg": 29.0,
					"breed_id": 2, "birth_date": "2024-01-02",
				},
			},
		},
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", st, string(body))
	}
	var batch struct {
		SuccessCount int `json:"successCount"`
	}
	mustUnmarshal(t, body, &batch)
	if batch.SuccessCount != 1 {
		t.Fatalf("expected user-b insert to succeed, body=%s", string(body))
	}

	// admin ve ambos
	st, body = doReq(t, ts.URL, "GET", "/sync/animals", "admin-1", "admin", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d", st)
	}
	mustUnmarshal(t, body, &pull)
	if pull.Count != 2 {
		t.Fatalf("expected admin to see 2 animals, got %d", pull.Count)
	}
}

func TestHTTP_Sync_GuardRails(t *testing.T) {
	ts := newTestServer(t)

	// sin usuario => 401
	st, _ := doReq(t, ts.URL, "POST", "/sync/batch", "", "", map[string]any{
		"operations": []map[string]any{},
	})
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", st)
	}

	// viewer no puede pushear
	st, _ = doReq(t, ts.URL, "POST", "/sync/batch", "viewer-1", "viewer", map[string]any{
		"operations": []map[string]any{},
	})
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer push, got %d", st)
	}

	// viewer sí puede pull
	st, _ = doReq(t, ts.URL, "GET", "/sync/animals", "viewer-1", "viewer", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 for viewer pull, got %d", st)
	}

	// operations faltante => 400
	st, _ = doReq(t, ts.URL, "POST", "/sync/batch", "user-1", "user", map[string]any{})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing operations, got %d", st)
	}

	// operations vacío => 400
	st, _ = doReq(t, ts.URL, "POST", "/sync/batch", "user-1", "user", map[string]any{
		"operations": []map[string]any{},
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty operations, got %d", st)
	}

	// since inválido => 400
	st, _ = doReq(t, ts.URL, "GET", "/sync/animals?since=ayer", "user-1", "user", nil)
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad since, got %d", st)
	}
}

func TestHTTP_Farms_AdminOnly(t *testing.T) {
	ts := newTestServer(t)

	payload := map[string]any{
		"name":   "La Esperanza",
		"tax_id": "900123456-7",
	}

	st, _ := doReq(t, ts.URL, "POST", "/farms", "user-1", "user", payload)
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 farm create by user, got %d", st)
	}

	st, body := doReq(t, ts.URL, "POST", "/farms", "admin-1", "admin", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 farm create by admin, got %d body=%s", st, string(body))
	}

	// NIT duplicado => 400
	st, _ = doReq(t, ts.URL, "POST", "/farms", "admin-1", "admin", payload)
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 duplicate tax id, got %d", st)
	}
}

func TestHTTP_Catalogs_RequireAuth(t *testing.T) {
	ts := newTestServer(t)

	st, _ := doReq(t, ts.URL, "GET", "/catalogs/breeds", "", "", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", st)
	}

	st, body := doReq(t, ts.URL, "GET", "/catalogs/breeds", "user-1", "user", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 breeds, got %d", st)
	}
	var breeds []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	mustUnmarshal(t, body, &breeds)
	if len(breeds) == 0 || breeds[len(breeds)-1].Name != "Otra Raza" {
		t.Fatalf("expected seeded breeds ending in sentinel, body=%s", string(body))
	}
}

func mustUnmarshal(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("unmarshal response: %v body=%s", err, string(body))
	}
}

func doReq(t *testing.T, baseURL, method, path, debugUserID, debugRole string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
		req.Header.Set("X-Debug-Role", debugRole)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
