package logging

import "testing"

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(25)
	var emitted []int
	for done := 0; done <= 8; done++ {
		if s.ShouldLog(done, 8) {
			emitted = append(emitted, done)
		}
	}
	want := []int{0, 2, 4, 6, 8}
	if len(emitted) != len(want) {
		t.Fatalf("emitted %v, want %v", emitted, want)
	}
	for i := range want {
		if emitted[i] != want[i] {
			t.Fatalf("emitted %v, want %v", emitted, want)
		}
	}
}

func TestProgressSamplerDefaultsAndReset(t *testing.T) {
	s := NewProgressSampler(0)
	if s.bucketSize != 10 {
		t.Fatalf("bucketSize = %v, want 10", s.bucketSize)
	}
	if !s.ShouldLog(5, 10) {
		t.Fatal("expected first sample to log")
	}
	if s.ShouldLog(5, 10) {
		t.Fatal("expected repeat sample to be suppressed")
	}
	s.Reset()
	if !s.ShouldLog(5, 10) {
		t.Fatal("expected sample after reset to log")
	}

	var nilSampler *ProgressSampler
	if !nilSampler.ShouldLog(1, 2) {
		t.Fatal("nil sampler should always log")
	}
	nilSampler.Reset()
}
