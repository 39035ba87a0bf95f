package model

import (
	"encoding/json"
	"testing"
)

func TestOrderItemsDecodeArray(t *testing.T) {
	var o Order
	data := []byte(`{"id":1,"customerEmail":"a@b.com","items":[{"id":7,"name":"Pad Thai","price":11.5,"quantity":2}],"status":"pending"}`)
	if err := json.Unmarshal(data, &o); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(o.Items) != 1 || o.Items[0].ID != 7 || o.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", o.Items)
	}
}

func TestOrderItemsDecodeDoubleEncoded(t *testing.T) {
	var o Order
	data := []byte(`{"id":2,"items":"[{\"id\":3,\"name\":\"Ramen\",\"price\":9,\"quantity\":1}]"}`)
	if err := json.Unmarshal(data, &o); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(o.Items) != 1 || o.Items[0].Name != "Ramen" {
		t.Fatalf("unexpected items: %+v", o.Items)
	}
}

func TestOrderItemsMalformedYieldsEmpty(t *testing.T) {
	for _, items := range []string{`"not json"`, `42`, `{"id":1}`, `null`} {
		var o Order
		if err := json.Unmarshal([]byte(`{"id":3,"items":`+items+`}`), &o); err != nil {
			t.Fatalf("items=%s: order should still decode, got %v", items, err)
		}
		if len(o.Items) != 0 {
			t.Fatalf("items=%s: expected empty snapshot, got %+v", items, o.Items)
		}
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	if OrderStatus("unknown").Valid() {
		t.Fatal("unknown status should not be valid")
	}
}

func TestUserFullName(t *testing.T) {
	u := User{Email: "jane@everbite.dev", FirstName: "Jane", LastName: "Doe"}
	if got := u.FullName(); got != "Jane Doe" {
		t.Fatalf("got %q", got)
	}
	u = User{Email: "jane@everbite.dev"}
	if got := u.FullName(); got != "jane" {
		t.Fatalf("got %q", got)
	}
}
