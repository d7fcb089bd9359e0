package corpus

import "testing"

func TestNew_AssignsPositionalIDs(t *testing.T) {
	c, err := New([]Fields{
		{Title: "Alpha", Plot: "a bright joyful festival", ReleaseYear: 1999},
		{Title: "Beta", Plot: "a dark somber funeral"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	item, ok := c.Item(1)
	if !ok {
		t.Fatal("expected item 1")
	}
	if item.ID() != 1 || item.Title() != "Beta" {
		t.Errorf("Item(1) = %d %q", item.ID(), item.Title())
	}

	first, _ := c.Item(0)
	if first.ReleaseYear() != 1999 {
		t.Errorf("ReleaseYear() = %d", first.ReleaseYear())
	}
}

func TestNew_RequiresTitleAndPlot(t *testing.T) {
	tests := []struct {
		name string
		row  Fields
	}{
		{"missing title", Fields{Plot: "p"}},
		{"missing plot", Fields{Title: "t"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New([]Fields{tc.row}); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestItem_OutOfRange(t *testing.T) {
	c, _ := New([]Fields{{Title: "t", Plot: "p"}})
	for _, id := range []int{-1, 1, 100} {
		if _, ok := c.Item(id); ok {
			t.Errorf("Item(%d) should not exist", id)
		}
	}
}

func TestPlots_PreservesOrder(t *testing.T) {
	c, _ := New([]Fields{
		{Title: "a", Plot: "first"},
		{Title: "b", Plot: "second"},
		{Title: "c", Plot: "third"},
	})
	plots := c.Plots()
	want := []string{"first", "second", "third"}
	for i := range want {
		if plots[i] != want[i] {
			t.Errorf("Plots()[%d] = %q, want %q", i, plots[i], want[i])
		}
	}
}
