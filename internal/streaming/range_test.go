package streaming

import "testing"

func TestParseRangeNoHeader(t *testing.T) {
	_, ok, err := parseRange("", 1000)
	if ok || err != nil {
		t.Fatalf("parseRange(empty) = ok=%v err=%v, want ok=false err=nil", ok, err)
	}
}

func TestParseRangeFullSuffix(t *testing.T) {
	r, ok, err := parseRange("bytes=500-", 1000)
	if err != nil || !ok {
		t.Fatalf("parseRange = %v, %v, %v", r, ok, err)
	}
	if r.start != 500 || r.end != 999 {
		t.Fatalf("range = %+v, want start=500 end=999", r)
	}
}

func TestParseRangeExplicitEnd(t *testing.T) {
	r, ok, err := parseRange("bytes=0-99", 1000)
	if err != nil || !ok {
		t.Fatalf("parseRange = %v, %v, %v", r, ok, err)
	}
	if r.start != 0 || r.end != 99 || r.length() != 100 {
		t.Fatalf("range = %+v", r)
	}
}

func TestParseRangeSuffixLength(t *testing.T) {
	r, ok, err := parseRange("bytes=-100", 1000)
	if err != nil || !ok {
		t.Fatalf("parseRange = %v, %v, %v", r, ok, err)
	}
	if r.start != 900 || r.end != 999 {
		t.Fatalf("range = %+v, want last 100 bytes", r)
	}
}

func TestParseRangeSuffixLargerThanFile(t *testing.T) {
	r, ok, err := parseRange("bytes=-5000", 1000)
	if err != nil || !ok {
		t.Fatalf("parseRange = %v, %v, %v", r, ok, err)
	}
	if r.start != 0 || r.end != 999 {
		t.Fatalf("range = %+v, want clamped to whole file", r)
	}
}

func TestParseRangeOutOfBounds(t *testing.T) {
	_, ok, err := parseRange("bytes=0-1000", 1000)
	if ok || err == nil {
		t.Fatalf("expected range-not-satisfiable, got ok=%v err=%v", ok, err)
	}
}

func TestParseRangeStartAfterEnd(t *testing.T) {
	_, ok, err := parseRange("bytes=500-100", 1000)
	if ok || err == nil {
		t.Fatalf("expected range-not-satisfiable for inverted range, got ok=%v err=%v", ok, err)
	}
}

func TestParseRangeMalformed(t *testing.T) {
	for _, header := range []string{"bytes=abc-100", "bytes=", "bytes=-", "items=0-100"} {
		if _, ok, err := parseRange(header, 1000); ok || err == nil {
			t.Fatalf("parseRange(%q) expected error, got ok=%v err=%v", header, ok, err)
		}
	}
}

func TestParseRangeMultipleRangesRejected(t *testing.T) {
	_, ok, err := parseRange("bytes=0-99,200-299", 1000)
	if ok || err == nil {
		t.Fatal("expected multi-range request to be rejected")
	}
}
