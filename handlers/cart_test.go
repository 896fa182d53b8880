package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func TestCreateCart(t *testing.T) {
	db := freshDB()
	app := newTestApp(db, uuid.New())

	w := app.serve(jsonRequest("POST", "/api/cart", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	id, err := uuid.Parse(resp["id"].(string))
	if err != nil {
		t.Fatalf("expected a cart id, got %v", resp["id"])
	}
	if _, ok := app.carts.Get(id); !ok {
		t.Error("cart should exist in the store")
	}
	if resp["subtotal_pence"] != float64(0) {
		t.Errorf("expected empty subtotal, got %v", resp["subtotal_pence"])
	}
}

func TestAddItemPricesFromMenu(t *testing.T) {
	db := freshDB()
	app := newTestApp(db, uuid.New())
	cat := seedCategory(db, "Curries")
	korma := seedMenuItem(db, "Korma", cat.ID, 950, true)
	naan := seedMenuItem(db, "Naan", cat.ID, 275, true)
	ct := app.carts.Create()

	url := "/api/cart/" + ct.ID.String() + "/items"
	app.serve(jsonRequest("POST", url, map[string]interface{}{"menu_item_id": korma.ID, "quantity": 1}))
	app.serve(jsonRequest("POST", url, map[string]interface{}{"menu_item_id": naan.ID, "quantity": 2}))
	w := app.serve(jsonRequest("POST", url, map[string]interface{}{"menu_item_id": korma.ID, "quantity": 1}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["subtotal_pence"] != float64(2*950+2*275) {
		t.Errorf("expected subtotal 2450, got %v", resp["subtotal_pence"])
	}
	if resp["item_count"] != float64(4) {
		t.Errorf("expected 4 items, got %v", resp["item_count"])
	}
	if items := resp["items"].([]interface{}); len(items) != 2 {
		t.Errorf("expected repeated adds to merge into 2 lines, got %d", len(items))
	}
}

func TestAddItemRejectsUnavailable(t *testing.T) {
	db := freshDB()
	app := newTestApp(db, uuid.New())
	cat := seedCategory(db, "Specials")
	off := seedMenuItem(db, "Sold Out Special", cat.ID, 1500, false)
	ct := app.carts.Create()

	w := app.serve(jsonRequest("POST", "/api/cart/"+ct.ID.String()+"/items", map[string]interface{}{
		"menu_item_id": off.ID,
		"quantity":     1,
	}))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAddItemValidation(t *testing.T) {
	db := freshDB()
	app := newTestApp(db, uuid.New())
	cat := seedCategory(db, "Curries")
	item := seedMenuItem(db, "Korma", cat.ID, 950, true)
	ct := app.carts.Create()

	for _, qty := range []int{0, -1, 100} {
		w := app.serve(jsonRequest("POST", "/api/cart/"+ct.ID.String()+"/items", map[string]interface{}{
			"menu_item_id": item.ID,
			"quantity":     qty,
		}))
		if w.Code != http.StatusBadRequest {
			t.Errorf("quantity %d: expected status 400, got %d", qty, w.Code)
		}
	}

	w := app.serve(jsonRequest("POST", "/api/cart/"+uuid.New().String()+"/items", map[string]interface{}{
		"menu_item_id": item.ID,
		"quantity":     1,
	}))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown cart: expected status 404, got %d", w.Code)
	}
}

func TestAddItemCannotPushLinePastLimit(t *testing.T) {
	db := freshDB()
	app := newTestApp(db, uuid.New())
	cat := seedCategory(db, "Sides")
	naan := seedMenuItem(db, "Naan", cat.ID, 275, true)
	ct := app.carts.Create()
	url := "/api/cart/" + ct.ID.String() + "/items"

	w := app.serve(jsonRequest("POST", url, map[string]interface{}{"menu_item_id": naan.ID, "quantity": 60}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	w = app.serve(jsonRequest("POST", url, map[string]interface{}{"menu_item_id": naan.ID, "quantity": 60}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}

	got, _ := app.carts.Get(ct.ID)
	if got.Items[0].Quantity != 60 {
		t.Errorf("rejected add must leave the line alone, got %d", got.Items[0].Quantity)
	}
}

func TestUpdateAndRemoveCartItem(t *testing.T) {
	db := freshDB()
	app := newTestApp(db, uuid.New())
	cat := seedCategory(db, "Curries")
	korma := seedMenuItem(db, "Korma", cat.ID, 950, true)
	naan := seedMenuItem(db, "Naan", cat.ID, 275, true)
	ct := app.cartWith(map[uuid.UUID]int{korma.ID: 1, naan.ID: 1})
	base := "/api/cart/" + ct.ID.String() + "/items/"

	w := app.serve(jsonRequest("PUT", base+korma.ID.String(), map[string]int{"quantity": 3}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if parseResponse(w)["subtotal_pence"] != float64(3*950+275) {
		t.Errorf("unexpected subtotal %v", parseResponse(w)["subtotal_pence"])
	}

	// Quantity zero removes the line.
	w = app.serve(jsonRequest("PUT", base+naan.ID.String(), map[string]int{"quantity": 0}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if items := parseResponse(w)["items"].([]interface{}); len(items) != 1 {
		t.Errorf("expected 1 line, got %d", len(items))
	}

	w = app.serve(jsonRequest("DELETE", base+korma.ID.String(), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	w = app.serve(jsonRequest("DELETE", base+korma.ID.String(), nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for item not in cart, got %d", w.Code)
	}
}

func TestGetCartFlagsItemsTakenOffMenu(t *testing.T) {
	db := freshDB()
	app := newTestApp(db, uuid.New())
	cat := seedCategory(db, "Curries")
	korma := seedMenuItem(db, "Korma", cat.ID, 950, true)
	naan := seedMenuItem(db, "Naan", cat.ID, 275, true)
	ct := app.cartWith(map[uuid.UUID]int{korma.ID: 1, naan.ID: 2})

	db.Model(&naan).Update("is_available", false)

	w := app.serve(jsonRequest("GET", "/api/cart/"+ct.ID.String(), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["subtotal_pence"] != float64(950) {
		t.Errorf("unavailable lines should not count, got subtotal %v", resp["subtotal_pence"])
	}
	unavailable := 0
	for _, raw := range resp["items"].([]interface{}) {
		if raw.(map[string]interface{})["is_available"] == false {
			unavailable++
		}
	}
	if unavailable != 1 {
		t.Errorf("expected 1 unavailable line, got %d", unavailable)
	}
}

func TestDeleteCart(t *testing.T) {
	db := freshDB()
	app := newTestApp(db, uuid.New())
	ct := app.carts.Create()

	w := app.serve(jsonRequest("DELETE", "/api/cart/"+ct.ID.String(), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	w = app.serve(jsonRequest("GET", "/api/cart/"+ct.ID.String(), nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", w.Code)
	}
}
