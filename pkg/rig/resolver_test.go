package rig

import "testing"

func TestResolver_PrefersNativeName(t *testing.T) {
	r := NewResolver(NewCatalog("Blink_L", "Blink_R", "EyeBlinkLeft"))

	if got := r.Resolve(BlendBlinkL); got != "Blink_L" {
		t.Errorf("Resolve(BlinkL) = %q, want Blink_L", got)
	}
}

func TestResolver_FallsBackToPreset(t *testing.T) {
	r := NewResolver(NewCatalog("aa", "ih"))

	if got := r.Resolve(BlendBlinkL); got != "EyeBlinkLeft" {
		t.Errorf("Resolve(BlinkL) = %q, want EyeBlinkLeft", got)
	}
	if got := r.Resolve(BlendBlinkR); got != "EyeBlinkRight" {
		t.Errorf("Resolve(BlinkR) = %q, want EyeBlinkRight", got)
	}
	if got := r.Resolve(BlendA); got != "aa" {
		t.Errorf("Resolve(A) = %q, want aa", got)
	}
}

func TestResolver_UnknownNameResolvesToItself(t *testing.T) {
	r := NewResolver(NewCatalog())

	if got := r.Resolve("Joy"); got != "Joy" {
		t.Errorf("Resolve(Joy) = %q", got)
	}
}

func TestResolver_Lookup(t *testing.T) {
	r := NewResolver(NewCatalog("Blink_L"))

	if name, ok := r.Lookup(BlendBlinkL); !ok || name != "Blink_L" {
		t.Errorf("Lookup(BlinkL) = %q, %v", name, ok)
	}
	if name, ok := r.Lookup(BlendBlinkR); ok || name != "EyeBlinkRight" {
		t.Errorf("Lookup(BlinkR) = %q, %v; want EyeBlinkRight, false", name, ok)
	}
}

func TestResolver_CachesPerSession(t *testing.T) {
	r := NewResolver(NewCatalog("Blink_L"))
	first := r.Resolve(BlendBlinkL)

	// The catalog is immutable after load; a poisoned cache entry proves the
	// second call never re-evaluated the catalog.
	r.cache[BlendBlinkL] = "cached"
	if got := r.Resolve(BlendBlinkL); got != "cached" {
		t.Errorf("second Resolve = %q, want cached value (first was %q)", got, first)
	}

	// A new avatar gets a new resolver and a fresh evaluation.
	r2 := NewResolver(NewCatalog())
	if got := r2.Resolve(BlendBlinkL); got != "EyeBlinkLeft" {
		t.Errorf("new resolver Resolve = %q", got)
	}
}
