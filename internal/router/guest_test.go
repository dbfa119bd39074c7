package router_test

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gamecatalog/backend/internal/bgg"
	"gamecatalog/backend/internal/hub"
	"gamecatalog/backend/internal/models"

	"gorm.io/gorm"
)

type ratingSummary struct {
	Average  float64 `json:"average"`
	Count    int64   `json:"count"`
	MyRating *int    `json:"my_rating"`
}

func TestRatingsUpsertPerIdentity(t *testing.T) {
	e := newEnv(t, 100)
	game := e.seedGame("Azul", bgg.DifficultyMediumLight, bgg.PlayTime45, 2, 4)
	ratings := fmt.Sprintf("/api/v1/games/%d/ratings", game.ID)

	w := e.do(http.MethodPost, ratings, map[string]any{"rating": 4, "device_fingerprint": "device-0001"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("rate status = %d %s", w.Code, w.Body)
	}

	// Same identity again replaces the earlier value.
	w = e.do(http.MethodPost, ratings, map[string]any{"rating": 2, "device_fingerprint": "device-0001"}, "")
	got := decode[ratingSummary](t, w)
	if got.Count != 1 || got.Average != 2 || got.MyRating == nil || *got.MyRating != 2 {
		t.Fatalf("after re-rate = %+v", got)
	}

	// Another device behind the same IP is a separate identity.
	w = e.do(http.MethodPost, ratings, map[string]any{"rating": 5, "device_fingerprint": "device-0002"}, "")
	got = decode[ratingSummary](t, w)
	if got.Count != 2 || got.Average != 3.5 {
		t.Fatalf("after second device = %+v", got)
	}

	w = e.do(http.MethodGet, ratings+"?device_fingerprint=device-0001", nil, "")
	got = decode[ratingSummary](t, w)
	if got.MyRating == nil || *got.MyRating != 2 {
		t.Errorf("my_rating = %v", got.MyRating)
	}
	w = e.do(http.MethodGet, ratings, nil, "")
	if got = decode[ratingSummary](t, w); got.MyRating != nil {
		t.Errorf("anonymous my_rating = %v", *got.MyRating)
	}

	w = e.do(http.MethodGet, fmt.Sprintf("/api/v1/games/%d?device_fingerprint=device-0002", game.ID), nil, "")
	detail := decode[struct {
		Rating ratingSummary `json:"rating"`
	}](t, w)
	if detail.Rating.Count != 2 || detail.Rating.MyRating == nil || *detail.Rating.MyRating != 5 {
		t.Errorf("game detail rating = %+v", detail.Rating)
	}

	w = e.do(http.MethodDelete, ratings+"?device_fingerprint=device-0001", nil, "")
	if got = decode[ratingSummary](t, w); w.Code != http.StatusOK || got.Count != 1 {
		t.Fatalf("withdraw = %d %+v", w.Code, got)
	}
	if w = e.do(http.MethodDelete, ratings+"?device_fingerprint=device-0001", nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("second withdraw status = %d", w.Code)
	}

	// Withdrawn identities can rate again.
	w = e.do(http.MethodPost, ratings, map[string]any{"rating": 3, "device_fingerprint": "device-0001"}, "")
	if got = decode[ratingSummary](t, w); got.Count != 2 {
		t.Errorf("re-rate after withdraw = %+v", got)
	}
}

func TestRatingValidation(t *testing.T) {
	e := newEnv(t, 100)
	game := e.seedGame("Azul", bgg.DifficultyMediumLight, bgg.PlayTime45, 2, 4)
	ratings := fmt.Sprintf("/api/v1/games/%d/ratings", game.ID)

	tests := []struct {
		name   string
		target string
		body   map[string]any
		want   int
	}{
		{"zero", ratings, map[string]any{"rating": 0, "device_fingerprint": "device-0001"}, http.StatusBadRequest},
		{"six", ratings, map[string]any{"rating": 6, "device_fingerprint": "device-0001"}, http.StatusBadRequest},
		{"short fingerprint", ratings, map[string]any{"rating": 3, "device_fingerprint": "abc"}, http.StatusBadRequest},
		{"bad fingerprint", ratings, map[string]any{"rating": 3, "device_fingerprint": "<script>alert</script>"}, http.StatusBadRequest},
		{"unknown game", "/api/v1/games/9999/ratings", map[string]any{"rating": 3, "device_fingerprint": "device-0001"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := e.do(http.MethodPost, tt.target, tt.body, ""); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

type wishlistItem struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Votes int64  `json:"votes"`
	Voted bool   `json:"voted"`
}

func TestWishlistFlow(t *testing.T) {
	e := newEnv(t, 100)
	const alice, bob = "guest-alice-01", "guest-bob-0001"

	w := e.do(http.MethodPost, "/api/v1/wishlist", map[string]string{"title": "Spirit Island", "guest_id": alice}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("suggest status = %d %s", w.Code, w.Body)
	}
	spirit := decode[wishlistItem](t, w)
	if spirit.Votes != 1 || !spirit.Voted {
		t.Errorf("suggestion = %+v", spirit)
	}

	w = e.do(http.MethodPost, "/api/v1/wishlist", map[string]string{"title": "  spirit ISLAND ", "guest_id": bob}, "")
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate title status = %d", w.Code)
	}

	vote := fmt.Sprintf("/api/v1/wishlist/%d/vote", spirit.ID)
	w = e.do(http.MethodPost, vote, map[string]string{"guest_id": bob}, "")
	if got := decode[map[string]int64](t, w); w.Code != http.StatusOK || got["votes"] != 2 {
		t.Fatalf("vote = %d %v", w.Code, got)
	}
	if w = e.do(http.MethodPost, vote, map[string]string{"guest_id": bob}, ""); w.Code != http.StatusConflict {
		t.Errorf("second vote status = %d", w.Code)
	}
	if w = e.do(http.MethodPost, vote, map[string]string{"guest_id": alice}, ""); w.Code != http.StatusConflict {
		t.Errorf("suggester vote status = %d", w.Code)
	}
	if w = e.do(http.MethodPost, "/api/v1/wishlist/9999/vote", map[string]string{"guest_id": bob}, ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown item status = %d", w.Code)
	}
	if w = e.do(http.MethodPost, vote, map[string]string{"guest_id": "x"}, ""); w.Code != http.StatusBadRequest {
		t.Errorf("invalid guest id status = %d", w.Code)
	}

	e.do(http.MethodPost, "/api/v1/wishlist", map[string]string{"title": "Azul", "guest_id": bob}, "")

	w = e.do(http.MethodGet, "/api/v1/wishlist?guest_id="+alice, nil, "")
	items := decode[[]wishlistItem](t, w)
	if len(items) != 2 || items[0].Title != "Spirit Island" || items[1].Title != "Azul" {
		t.Fatalf("wishlist = %+v", items)
	}
	if items[0].Votes != 2 || !items[0].Voted || items[1].Voted {
		t.Errorf("wishlist = %+v", items)
	}

	w = e.do(http.MethodDelete, vote+"?guest_id="+bob, nil, "")
	if got := decode[map[string]int64](t, w); w.Code != http.StatusOK || got["votes"] != 1 {
		t.Errorf("unvote = %d %v", w.Code, got)
	}
	if w = e.do(http.MethodDelete, vote+"?guest_id="+bob, nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("second unvote status = %d", w.Code)
	}
}

func TestUnvoteReportsCountFailure(t *testing.T) {
	e := newEnv(t, 100)
	const alice, bob = "guest-alice-01", "guest-bob-0001"

	w := e.do(http.MethodPost, "/api/v1/wishlist", map[string]string{"title": "Root", "guest_id": alice}, "")
	item := decode[wishlistItem](t, w)
	vote := fmt.Sprintf("/api/v1/wishlist/%d/vote", item.ID)
	e.do(http.MethodPost, vote, map[string]string{"guest_id": bob}, "")

	// Fail reads of the votes table only; the delete still goes through.
	err := e.db.Callback().Query().Before("gorm:query").Register("test:fail_vote_count", func(tx *gorm.DB) {
		if tx.Statement.Table == "wishlist_votes" {
			_ = tx.AddError(errors.New("count failed"))
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	w = e.do(http.MethodDelete, vote+"?guest_id="+bob, nil, "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d %s, want 500", w.Code, w.Body)
	}
	if _, ok := decode[map[string]any](t, w)["votes"]; ok {
		t.Errorf("body reports a vote count: %s", w.Body)
	}
}

func TestAdminDeleteWishlistItemFreesTitle(t *testing.T) {
	e := newEnv(t, 100)
	admin := e.token(models.RoleAdmin)

	w := e.do(http.MethodPost, "/api/v1/wishlist", map[string]string{"title": "Root", "guest_id": "guest-alice-01"}, "")
	item := decode[wishlistItem](t, w)

	target := fmt.Sprintf("/api/v1/admin/wishlist/%d", item.ID)
	if w = e.do(http.MethodDelete, target, nil, e.token("user")); w.Code != http.StatusForbidden {
		t.Errorf("non-admin delete status = %d", w.Code)
	}
	if w = e.do(http.MethodDelete, target, nil, admin); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w = e.do(http.MethodDelete, target, nil, admin); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d", w.Code)
	}

	var votes int64
	e.db.Model(&models.WishlistVote{}).Count(&votes)
	if votes != 0 {
		t.Errorf("votes left = %d", votes)
	}

	w = e.do(http.MethodPost, "/api/v1/wishlist", map[string]string{"title": "Root", "guest_id": "guest-bob-0001"}, "")
	if w.Code != http.StatusCreated {
		t.Errorf("re-suggest status = %d", w.Code)
	}
}

func TestMessages(t *testing.T) {
	e := newEnv(t, 100)
	admin := e.token(models.RoleAdmin)

	if w := e.do(http.MethodPost, "/api/v1/messages", map[string]string{"name": "Alex"}, ""); w.Code != http.StatusBadRequest {
		t.Errorf("missing body status = %d", w.Code)
	}
	if w := e.do(http.MethodPost, "/api/v1/messages", map[string]string{"name": "Alex", "body": "Hi", "email": "nope"}, ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad email status = %d", w.Code)
	}

	w := e.do(http.MethodPost, "/api/v1/messages", map[string]string{"name": "Alex", "body": "Azul on Friday?"}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d %s", w.Code, w.Body)
	}
	msg := decode[struct {
		ID uint `json:"id"`
	}](t, w)

	var stored models.Message
	e.db.First(&stored, msg.ID)
	if stored.IPHash == "" {
		t.Error("message stored without ip hash")
	}

	if w = e.do(http.MethodGet, "/api/v1/admin/messages", nil, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous list status = %d", w.Code)
	}

	type page struct {
		Data []struct {
			Body string `json:"body"`
			Read bool   `json:"read"`
		} `json:"data"`
		Meta struct {
			TotalItems int64 `json:"total_items"`
		} `json:"meta"`
	}
	w = e.do(http.MethodGet, "/api/v1/admin/messages", nil, admin)
	list := decode[page](t, w)
	if list.Meta.TotalItems != 1 || list.Data[0].Body != "Azul on Friday?" || list.Data[0].Read {
		t.Fatalf("list = %+v", list)
	}

	w = e.do(http.MethodPut, fmt.Sprintf("/api/v1/admin/messages/%d/read", msg.ID), nil, admin)
	if got := decode[map[string]any](t, w); got["read"] != true {
		t.Errorf("mark read = %v", got)
	}
	w = e.do(http.MethodGet, "/api/v1/admin/messages?unread=true", nil, admin)
	if list = decode[page](t, w); list.Meta.TotalItems != 0 {
		t.Errorf("unread = %d", list.Meta.TotalItems)
	}

	target := fmt.Sprintf("/api/v1/admin/messages/%d", msg.ID)
	if w = e.do(http.MethodDelete, target, nil, admin); w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}
	if w = e.do(http.MethodDelete, target, nil, admin); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d", w.Code)
	}
}

func TestGuestWritesAreRateLimited(t *testing.T) {
	e := newEnv(t, 1)

	if w := e.do(http.MethodPost, "/api/v1/messages", map[string]string{"name": "A", "body": "one"}, ""); w.Code != http.StatusCreated {
		t.Fatalf("first status = %d", w.Code)
	}
	if w := e.do(http.MethodPost, "/api/v1/messages", map[string]string{"name": "A", "body": "two"}, ""); w.Code != http.StatusTooManyRequests {
		t.Errorf("second status = %d, want 429", w.Code)
	}
	// Reads stay open.
	if w := e.do(http.MethodGet, "/api/v1/wishlist", nil, ""); w.Code != http.StatusOK {
		t.Errorf("read status = %d", w.Code)
	}
}

// postMessageVia sends a guest message with the given X-Forwarded-For header.
func (e *env) postMessageVia(forwardedFor, body string) *httptest.ResponseRecorder {
	e.t.Helper()
	payload := fmt.Sprintf(`{"name":"A","body":%q}`, body)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func TestForwardedForIgnoredWithoutTrustedProxy(t *testing.T) {
	e := newEnv(t, 1)

	var codes []int
	for i, ip := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		codes = append(codes, e.postMessageVia(ip, fmt.Sprintf("msg %d", i)).Code)
	}
	want := []int{http.StatusCreated, http.StatusTooManyRequests, http.StatusTooManyRequests}
	if fmt.Sprint(codes) != fmt.Sprint(want) {
		t.Errorf("statuses = %v, want %v", codes, want)
	}
}

func TestForwardedForHonouredFromTrustedProxy(t *testing.T) {
	// httptest requests arrive from 192.0.2.1.
	e := newEnvBehind(t, 1, []string{"192.0.2.1"})

	for i, ip := range []string{"203.0.113.1", "203.0.113.2"} {
		if w := e.postMessageVia(ip, fmt.Sprintf("msg %d", i)); w.Code != http.StatusCreated {
			t.Fatalf("client %s status = %d, want 201", ip, w.Code)
		}
	}
	if w := e.postMessageVia("203.0.113.1", "again"); w.Code != http.StatusTooManyRequests {
		t.Errorf("repeat client status = %d, want 429", w.Code)
	}

	var stored []models.Message
	e.db.Order("id").Find(&stored)
	if len(stored) != 2 || stored[0].IPHash == stored[1].IPHash {
		t.Errorf("forwarded clients not told apart: %+v", stored)
	}
}

func TestAdminEventStream(t *testing.T) {
	e := newEnv(t, 100)
	admin := e.token(models.RoleAdmin)
	srv := httptest.NewServer(e.engine)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/admin/events", nil)
	req.Header.Set("Authorization", "Bearer "+admin)

	// The response headers arrive only after the first flush, so subscribe in the background.
	respc := make(chan *http.Response, 1)
	go func() {
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			respc <- nil
			return
		}
		respc <- resp
	}()

	deadline := time.Now().Add(2 * time.Second)
	for hub.GlobalHub.Subscribers(hub.AdminChannel) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("event stream never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	post, err := http.Post(srv.URL+"/api/v1/messages", "application/json",
		strings.NewReader(`{"name":"Alex","body":"See you Friday"}`))
	if err != nil {
		t.Fatal(err)
	}
	post.Body.Close()

	resp := <-respc
	if resp == nil {
		t.Fatal("stream request failed")
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("Content-Type = %q", ct)
	}

	scanner := bufio.NewScanner(resp.Body)
	var event, data string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimPrefix(line, "event:")
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimPrefix(line, "data:")
		}
		if data != "" {
			break
		}
	}
	if event != hub.EventMessageCreated || !strings.Contains(data, "See you Friday") {
		t.Errorf("event = %q data = %q", event, data)
	}
}
