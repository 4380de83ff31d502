package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/auth"
	entsvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/entitlements"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/users"
)

func TestRegisterLoginAndDuplicate(t *testing.T) {
	svc := authsvc.NewService(authsvc.NewJWTManager("test-secret", time.Hour), users.NewMemoryStore())
	h := NewAuthHandler(svc)

	body := `{"name":"Emma","email":"emma@example.com","password":"s3cret!"}`
	rr := httptest.NewRecorder()
	h.Register(rr, httptest.NewRequest(http.MethodPost, "/v1/auth/register", bytes.NewReader([]byte(body))))
	if rr.Code != http.StatusCreated {
		t.Fatalf("register: got %d body=%s", rr.Code, rr.Body.String())
	}
	var created struct {
		AccessToken string `json:"access_token"`
		User        struct {
			Subscription string `json:"subscription"`
		} `json:"user"`
	}
	decodeBody(t, rr, &created)
	if created.AccessToken == "" || created.User.Subscription != "free" {
		t.Fatalf("unexpected register payload: %+v", created)
	}

	rr = httptest.NewRecorder()
	h.Register(rr, httptest.NewRequest(http.MethodPost, "/v1/auth/register", bytes.NewReader([]byte(body))))
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate register: got %d want %d", rr.Code, http.StatusConflict)
	}

	rr = httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/v1/auth/login",
		bytes.NewReader([]byte(`{"email":"emma@example.com","password":"nope-nope"}`))))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: got %d want %d", rr.Code, http.StatusUnauthorized)
	}

	rr = httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/v1/auth/login",
		bytes.NewReader([]byte(`{"email":"emma@example.com","password":"s3cret!","extra":1}`))))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSubscribeRouteUpgradesUser(t *testing.T) {
	store := users.NewMemoryStore()
	authService := authsvc.NewService(authsvc.NewJWTManager("test-secret", time.Hour), store)
	res, err := authService.Register(context.Background(), "Aisha", "aisha@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	h := NewSubscriptionHandler(entsvc.NewService(store))
	r := chi.NewRouter()
	r.Post("/v1/subscribe/{planID}", h.Subscribe)

	do := func(plan string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/subscribe/"+plan, nil)
		req = req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{UserID: res.User.ID, SID: "sid"}))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	if rr := do("diamond"); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown plan: got %d want %d", rr.Code, http.StatusNotFound)
	}
	if rr := do("platinum"); rr.Code != http.StatusOK {
		t.Fatalf("subscribe: got %d body=%s", rr.Code, rr.Body.String())
	}
	u, _ := store.FindByID(context.Background(), res.User.ID)
	if u.Subscription != "platinum" {
		t.Fatalf("unexpected tier after subscribe: %s", u.Subscription)
	}
}
