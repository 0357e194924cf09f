package cache

import "testing"

func TestNamespacedKeyIsStableAndScoped(t *testing.T) {
	a := namespacedKey("abc123")
	b := namespacedKey("abc123")
	if a != b {
		t.Fatalf("namespacedKey must be deterministic: got %q and %q", a, b)
	}
	if a != "panelsched:solve:abc123" {
		t.Fatalf("unexpected key format: %q", a)
	}
}

func TestNamespacedKeyDiffersPerDigest(t *testing.T) {
	if namespacedKey("one") == namespacedKey("two") {
		t.Fatal("distinct digests must map to distinct keys")
	}
}
