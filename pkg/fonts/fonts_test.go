package fonts

import "testing"

func TestRegularIsCached(t *testing.T) {
	a, err := Regular()
	if err != nil {
		t.Fatalf("Regular: %v", err)
	}
	b, _ := Regular()
	if a != b {
		t.Error("Regular should return the cached font")
	}
}

func TestFaceMetrics(t *testing.T) {
	small, err := Face(12, 72)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	large, _ := Face(48, 0)
	if small.Metrics().Height >= large.Metrics().Height {
		t.Errorf("12pt height %v should be below 48pt height %v", small.Metrics().Height, large.Metrics().Height)
	}
}
