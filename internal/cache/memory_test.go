package cache

import (
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	key := Key("query", "covid vaccine autism")
	if err := c.Set(key, []byte("value"), time.Minute); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	val, found := c.Get(key)
	if !found {
		t.Fatal("Expected cache hit")
	}
	if string(val) != "value" {
		t.Errorf("Expected 'value', got %q", val)
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	if _, found := c.Get(Key("missing")); found {
		t.Error("Expected cache miss")
	}
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	k1 := Key("a")
	k2 := Key("b")
	_ = c.Set(k1, []byte("1"), time.Minute)
	_ = c.Set(k2, []byte("2"), time.Minute)

	_ = c.Delete(k1)
	if _, found := c.Get(k1); found {
		t.Error("Expected k1 deleted")
	}

	_ = c.Clear()
	if _, found := c.Get(k2); found {
		t.Error("Expected cache cleared")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	type snippet struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	}
	c := NewMemoryCache(time.Minute, time.Minute)

	want := []snippet{
		{Title: "Moon landing verified", URL: "https://example.com/a"},
		{Title: "Apollo 11 timeline", URL: "https://example.com/b"},
	}
	key := Key("ws", "moon landing")
	if err := SetJSON(c, key, want, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	got, found := GetJSON[[]snippet](c, key)
	if !found {
		t.Fatal("Expected cache hit")
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Round trip mismatch: %+v", got)
	}
}

func TestGetJSON_CorruptEntryIsMiss(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	key := Key("ws", "broken")
	_ = c.Set(key, []byte("{not json"), time.Minute)

	if _, found := GetJSON[[]string](c, key); found {
		t.Error("Expected corrupt entry to read as a miss")
	}
}

func TestKey_Deterministic(t *testing.T) {
	if Key("a", "b") != Key("a", "b") {
		t.Error("Expected identical keys for identical parts")
	}
	if Key("a", "b") == Key("ab") {
		t.Error("Expected part boundaries to affect the key")
	}
}
