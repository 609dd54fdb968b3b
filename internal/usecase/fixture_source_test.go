package usecase

import "testing"

func TestLiveClassifier_DefaultAllowList(t *testing.T) {
	t.Parallel()

	classifier := NewLiveClassifier(nil)

	for _, code := range []string{"1H", "2H", "HT", "ET", "BT", "P", "SUSP", "INT", "ht", " 2h "} {
		if !classifier.IsLive(code) {
			t.Fatalf("expected %q to classify as live", code)
		}
	}
	for _, code := range []string{"NS", "FT", "PST", "CANC", "", "??"} {
		if classifier.IsLive(code) {
			t.Fatalf("expected %q to classify as not-live", code)
		}
	}
}

func TestLiveClassifier_CustomAllowList(t *testing.T) {
	t.Parallel()

	classifier := NewLiveClassifier([]string{"1h", " live "})

	if !classifier.IsLive("1H") || !classifier.IsLive("LIVE") {
		t.Fatalf("custom codes not honored")
	}
	if classifier.IsLive("2H") {
		t.Fatalf("default codes must not leak into custom allow-list")
	}
}
