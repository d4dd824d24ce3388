package careerfair

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ip(i int) *int { return &i }

func placed(x, y, w, h int, number string) Booth {
	return Booth{ID: uuid.New(), X: ip(x), Y: ip(y), Width: w, Height: h, BoothNumber: number}
}

func TestRectOverlaps(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 2, H: 2}
	assert.True(t, a.Overlaps(Rect{X: 1, Y: 1, W: 2, H: 2}))
	assert.False(t, a.Overlaps(Rect{X: 2, Y: 0, W: 1, H: 1}), "edge-adjacent booths do not overlap")
	assert.False(t, a.Overlaps(Rect{X: 0, Y: 2, W: 5, H: 1}))
}

func TestValidatePlacement(t *testing.T) {
	grid := Grid{Width: 10, Height: 6}
	self := uuid.New()
	others := []Booth{
		placed(0, 0, 2, 2, "A1"),
		{ID: uuid.New(), Width: 1, Height: 1, CompanyName: "Unplaced Co"},
		{ID: self, X: ip(5), Y: ip(5), Width: 1, Height: 1},
	}

	cases := []struct {
		name string
		p    Placement
		ok   bool
	}{
		{"free cell", Placement{X: ip(3), Y: ip(0), Width: 2, Height: 2}, true},
		{"own old position is ignored", Placement{X: ip(5), Y: ip(5), Width: 1, Height: 1}, true},
		{"unplace", Placement{Width: 1, Height: 1}, true},
		{"overlap", Placement{X: ip(1), Y: ip(1), Width: 1, Height: 1}, false},
		{"outside right", Placement{X: ip(9), Y: ip(0), Width: 2, Height: 1}, false},
		{"outside bottom", Placement{X: ip(0), Y: ip(5), Width: 1, Height: 2}, false},
		{"negative", Placement{X: ip(-1), Y: ip(0), Width: 1, Height: 1}, false},
		{"zero size", Placement{X: ip(4), Y: ip(4), Width: 0, Height: 1}, false},
		{"half set", Placement{X: ip(4), Width: 1, Height: 1}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePlacement(grid, self, tc.p, others)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrPlacementInvalid))
		})
	}
}

func TestValidatePlacement_ReportsOverlappedBooth(t *testing.T) {
	err := ValidatePlacement(Grid{Width: 5, Height: 5}, uuid.New(), Placement{X: ip(0), Y: ip(0), Width: 1, Height: 1}, []Booth{placed(0, 0, 1, 1, "B7")})

	var inv *InvalidError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, []string{"overlaps booth B7"}, inv.Reasons)
}

func TestValidateResize(t *testing.T) {
	booths := []Booth{placed(8, 0, 2, 1, "A"), {ID: uuid.New(), Width: 1, Height: 1}}

	assert.NoError(t, ValidateResize(Grid{Width: 10, Height: 10}, booths))
	assert.Error(t, ValidateResize(Grid{Width: 9, Height: 10}, booths))
}

func TestLayout(t *testing.T) {
	b1 := placed(3, 1, 1, 1, "C")
	b2 := placed(0, 1, 1, 1, "B")
	b3 := placed(5, 0, 1, 1, "A")
	u1 := Booth{ID: uuid.New(), BoothNumber: "Z"}
	u2 := Booth{ID: uuid.New(), BoothNumber: "", CompanyName: "Acme"}

	fp := Layout(Grid{Width: 10, Height: 10}, []Booth{b1, u1, b2, b3, u2})

	require.Len(t, fp.Placed, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{fp.Placed[0].BoothNumber, fp.Placed[1].BoothNumber, fp.Placed[2].BoothNumber})
	require.Len(t, fp.Unplaced, 2)
	assert.Equal(t, u2.ID, fp.Unplaced[0].ID)
	assert.Equal(t, 10, fp.Width)
}

func TestFairValidate(t *testing.T) {
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	f := Fair{Title: "Spring Fair", StartDate: start, EndDate: start.Add(8 * time.Hour), GridWidth: 10, GridHeight: 10}
	assert.NoError(t, f.Validate())

	f.EndDate = start.Add(-time.Hour)
	f.GridWidth = 101
	err := f.Validate()
	var inv *InvalidError
	require.True(t, errors.As(err, &inv))
	assert.Len(t, inv.Reasons, 2)
}
