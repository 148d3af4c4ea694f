package source

import "testing"

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want Span
	}{
		{"disjoint", Span{File: 1, Start: 2, End: 4}, Span{File: 1, Start: 8, End: 10}, Span{File: 1, Start: 2, End: 10}},
		{"nested", Span{File: 1, Start: 2, End: 10}, Span{File: 1, Start: 4, End: 5}, Span{File: 1, Start: 2, End: 10}},
		{"reversed", Span{File: 1, Start: 8, End: 10}, Span{File: 1, Start: 0, End: 1}, Span{File: 1, Start: 0, End: 10}},
		{"other file", Span{File: 1, Start: 2, End: 4}, Span{File: 2, Start: 0, End: 9}, Span{File: 1, Start: 2, End: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.want {
				t.Errorf("Cover = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpanContainsAndBefore(t *testing.T) {
	outer := Span{File: 3, Start: 10, End: 20}
	if !outer.Contains(Span{File: 3, Start: 10, End: 20}) {
		t.Error("span must contain itself")
	}
	if outer.Contains(Span{File: 3, Start: 9, End: 12}) {
		t.Error("span must not contain a range starting before it")
	}
	if outer.Contains(Span{File: 4, Start: 12, End: 13}) {
		t.Error("span must not contain a range from another file")
	}

	if !(Span{File: 1, Start: 50}).Before(Span{File: 2, Start: 0}) {
		t.Error("lower file id sorts first")
	}
	if !(Span{File: 1, Start: 3, End: 4}).Before(Span{File: 1, Start: 3, End: 5}) {
		t.Error("shorter span with same start sorts first")
	}
	if (Span{File: 1, Start: 3, End: 4}).Len() != 1 || !(Span{Start: 7, End: 7}).Empty() {
		t.Error("Len/Empty mismatch")
	}
}
