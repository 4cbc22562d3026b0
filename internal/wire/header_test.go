package wire

import "testing"

func TestHeaderAddAndGetFoldsCase(t *testing.T) {
	h := NewHeader()
	if err := h.Add("Content-Type", "text/plain"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	v, ok := h.Get("content-type")
	if !ok || v != "text/plain" {
		t.Errorf("Get(content-type) = %q, ok=%v, want text/plain, true", v, ok)
	}
}

func TestHeaderGetReturnsLastDuplicate(t *testing.T) {
	h := NewHeader()
	h.Add("X-Tag", "first")
	h.Add("X-Tag", "second")

	v, ok := h.Get("X-Tag")
	if !ok || v != "second" {
		t.Errorf("Get(X-Tag) = %q, ok=%v, want second, true", v, ok)
	}
	if h.Count("X-Tag") != 2 {
		t.Errorf("Count(X-Tag) = %d, want 2", h.Count("X-Tag"))
	}
}

func TestHeaderAddRejectsCRLFInjection(t *testing.T) {
	h := NewHeader()
	if err := h.Add("X-Evil", "value\r\nX-Injected: yes"); err != ErrBadHeader {
		t.Errorf("err = %v, want ErrBadHeader", err)
	}
	if err := h.Add("X-Evil\r\n", "value"); err != ErrBadHeader {
		t.Errorf("err = %v, want ErrBadHeader", err)
	}
}

func TestHeaderHas(t *testing.T) {
	h := NewHeader()
	if h.Has("Host") {
		t.Errorf("Has(Host) = true before Add")
	}
	h.Add("Host", "example.com")
	if !h.Has("Host") {
		t.Errorf("Has(Host) = false after Add")
	}
}

func TestHeaderSetReplacesExistingInPlace(t *testing.T) {
	h := NewHeader()
	h.Add("X-A", "1")
	h.Add("X-B", "2")
	h.Add("X-C", "3")

	h.Set("X-B", "replaced")

	var order []string
	h.VisitAll(func(name, value string) {
		order = append(order, name+"="+value)
	})
	want := []string{"X-A=1", "X-B=replaced", "X-C=3"}
	if len(order) != len(want) {
		t.Fatalf("fields = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("field %d = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestHeaderSetAppendsWhenAbsent(t *testing.T) {
	h := NewHeader()
	h.Add("X-A", "1")
	h.Set("X-New", "2")

	if !h.Has("X-New") {
		t.Errorf("X-New not present after Set")
	}
	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}
}

func TestHeaderSetCollapsesDuplicatesToOne(t *testing.T) {
	h := NewHeader()
	h.Add("X-Dup", "a")
	h.Add("X-Dup", "b")
	h.Set("X-Dup", "c")

	if h.Count("X-Dup") != 1 {
		t.Errorf("Count(X-Dup) = %d, want 1 after Set collapses duplicates", h.Count("X-Dup"))
	}
	v, _ := h.Get("X-Dup")
	if v != "c" {
		t.Errorf("Get(X-Dup) = %q, want c", v)
	}
}

func TestHeaderVisitAllPreservesArrivalOrder(t *testing.T) {
	h := NewHeader()
	h.Add("Z", "1")
	h.Add("A", "2")
	h.Add("M", "3")

	var names []string
	h.VisitAll(func(name, value string) { names = append(names, name) })

	want := []string{"Z", "A", "M"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("VisitAll order[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
