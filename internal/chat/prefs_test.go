package chat

import "testing"

func TestPreferenceDefaults(t *testing.T) {
	store := NewPrefStore(t.TempDir())
	prefs := store.Get("Ann")
	if !prefs.MessagesEnabled || !prefs.MentionsEnabled {
		t.Fatalf("messaging defaults wrong: %+v", prefs)
	}
	if prefs.SocialSpy || prefs.Format != "" || prefs.LastMessager != "" {
		t.Fatalf("unexpected non-zero defaults: %+v", prefs)
	}
}

func TestPreferencesSurviveReload(t *testing.T) {
	dir := t.TempDir()
	store := NewPrefStore(dir)
	if err := store.SetFormat("Ann", "staff"); err != nil {
		t.Fatalf("set format: %v", err)
	}
	if err := store.SetMessagesEnabled("Ann", false); err != nil {
		t.Fatalf("set messages: %v", err)
	}
	if err := store.SetLastMessager("Ann", "Bob"); err != nil {
		t.Fatalf("set last messager: %v", err)
	}
	if _, err := store.ToggleIgnore("Ann", "Cara"); err != nil {
		t.Fatalf("toggle ignore: %v", err)
	}

	reloaded := NewPrefStore(dir)
	prefs := reloaded.Get("ANN")
	if prefs.Format != "staff" || prefs.MessagesEnabled || prefs.LastMessager != "Bob" {
		t.Fatalf("reloaded prefs = %+v", prefs)
	}
	if !reloaded.IsIgnoring("Ann", "CARA") {
		t.Fatalf("ignore entry lost or case-sensitive")
	}
}

func TestToggleIgnoreFlips(t *testing.T) {
	store := NewPrefStore(t.TempDir())
	ignored, err := store.ToggleIgnore("Ann", "Bob")
	if err != nil || !ignored {
		t.Fatalf("first toggle = %v, %v", ignored, err)
	}
	if !store.IsIgnoring("Ann", "Bob") {
		t.Fatalf("ignore not recorded")
	}
	if store.IsIgnoring("Bob", "Ann") {
		t.Fatalf("ignore is not directional")
	}
	ignored, err = store.ToggleIgnore("Ann", "Bob")
	if err != nil || ignored {
		t.Fatalf("second toggle = %v, %v", ignored, err)
	}
	if store.IsIgnoring("Ann", "Bob") {
		t.Fatalf("ignore not removed")
	}
}

func TestGetReturnsACopy(t *testing.T) {
	store := NewPrefStore(t.TempDir())
	if _, err := store.ToggleIgnore("Ann", "Bob"); err != nil {
		t.Fatalf("toggle ignore: %v", err)
	}
	prefs := store.Get("Ann")
	delete(prefs.Ignored, FoldName("Bob"))
	if !store.IsIgnoring("Ann", "Bob") {
		t.Fatalf("mutating the returned copy changed the store")
	}
}
