package date

import "testing"

func TestAppend(t *testing.T) {
	h := new(History[string])
	d1, v1 := New(2025, 07, 01), "25 Jul 1"
	d2, v2 := New(2024, 07, 01), "24 Jul 1"

	// Test is about appending two values in reverse order and checking that everything is
	// as expected at every step of the way.

	if h.Len() != 0 {
		t.Errorf("History.Len() = %v want 0", h.Len())
	}

	h.Append(d1, v1)
	if h.Len() != 1 {
		t.Errorf("Append(d1, v1).Len() = %v want 1", h.Len())
	}

	h.Append(d2, v2)
	if h.Len() != 2 {
		t.Errorf("Append(d2, v2).Len() = %v want 2", h.Len())
	}

	if h.days[1] != d1 {
		t.Errorf("history[1].day = %v want %v", h.days[1], d1)
	}
	if h.days[0] != d2 {
		t.Errorf("history[0].day = %v want %v", h.days[0], d2)
	}
	if h.values[1] != v1 {
		t.Errorf("history[1].value = %v want %v", h.values[1], v1)
	}
	if h.values[0] != v2 {
		t.Errorf("history[0].value = %v want %v", h.values[0], v2)
	}

	h.Append(d1, "replaced")
	if got := h.values[1]; got != "replaced" || h.Len() != 2 {
		t.Errorf("Append on an existing day = %q (len %d), want replaced (len 2)", got, h.Len())
	}
}

func TestEntryAsOf(t *testing.T) {
	h := new(History[float64])
	h.Append(New(2025, 1, 10), 1.1)
	h.Append(New(2025, 1, 20), 1.2)

	if _, _, ok := h.EntryAsOf(New(2025, 1, 9)); ok {
		t.Errorf("EntryAsOf() before the first entry should not be found")
	}
	on, v, ok := h.EntryAsOf(New(2025, 1, 15))
	if !ok || on != New(2025, 1, 10) || v != 1.1 {
		t.Errorf("EntryAsOf(2025-01-15) = %v, %v, %v want 2025-01-10, 1.1, true", on, v, ok)
	}
	on, v, ok = h.EntryAsOf(New(2025, 1, 20))
	if !ok || on != New(2025, 1, 20) || v != 1.2 {
		t.Errorf("EntryAsOf(2025-01-20) = %v, %v, %v want 2025-01-20, 1.2, true", on, v, ok)
	}
	if _, v, ok := h.EntryAsOf(New(2030, 1, 1)); !ok || v != 1.2 {
		t.Errorf("EntryAsOf(2030-01-01) = %v, %v want 1.2, true", v, ok)
	}
}
