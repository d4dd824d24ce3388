package careerfair

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

type Grid struct {
	Width  int `json:"grid_width"`
	Height int `json:"grid_height"`
}

// Rect is a booth footprint in grid cells. X and Y are the top-left cell.
type Rect struct {
	X int
	Y int
	W int
	H int
}

func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

func (g Grid) Contains(r Rect) bool {
	return r.X >= 0 && r.Y >= 0 && r.W >= 1 && r.H >= 1 && r.X+r.W <= g.Width && r.Y+r.H <= g.Height
}

// Placement is a requested change to a booth's position. Nil X and Y
// remove the booth from the grid.
type Placement struct {
	X      *int
	Y      *int
	Width  int
	Height int
}

// ValidatePlacement checks p for booth against the grid and the other
// booths of the same fair. others may include booth itself; it is skipped.
func ValidatePlacement(grid Grid, booth uuid.UUID, p Placement, others []Booth) error {
	var reasons []string

	if p.Width < 1 || p.Height < 1 {
		reasons = append(reasons, "width and height must be at least 1")
	}
	if (p.X == nil) != (p.Y == nil) {
		reasons = append(reasons, "x and y must be set together")
	}
	if len(reasons) > 0 {
		return &InvalidError{Base: ErrPlacementInvalid, Reasons: reasons}
	}
	if p.X == nil {
		return nil
	}

	r := Rect{X: *p.X, Y: *p.Y, W: p.Width, H: p.Height}
	if !grid.Contains(r) {
		return &InvalidError{Base: ErrPlacementInvalid, Reasons: []string{
			fmt.Sprintf("booth at (%d,%d) size %dx%d exceeds %dx%d grid", r.X, r.Y, r.W, r.H, grid.Width, grid.Height),
		}}
	}

	for _, o := range others {
		if o.ID == booth {
			continue
		}
		or, ok := o.Rect()
		if !ok {
			continue
		}
		if r.Overlaps(or) {
			name := o.BoothNumber
			if name == "" {
				name = o.CompanyName
			}
			reasons = append(reasons, fmt.Sprintf("overlaps booth %s", name))
		}
	}
	if len(reasons) > 0 {
		return &InvalidError{Base: ErrPlacementInvalid, Reasons: reasons}
	}
	return nil
}

// ValidateResize reports booths that would fall outside a resized grid.
func ValidateResize(grid Grid, booths []Booth) error {
	var reasons []string
	for _, b := range booths {
		r, ok := b.Rect()
		if !ok {
			continue
		}
		if !grid.Contains(r) {
			reasons = append(reasons, fmt.Sprintf("booth %s at (%d,%d) would fall outside the grid", b.ID, r.X, r.Y))
		}
	}
	if len(reasons) > 0 {
		return &InvalidError{Base: ErrInvalid, Reasons: reasons}
	}
	return nil
}

type FloorPlan struct {
	Grid
	Placed   []Booth `json:"placed"`
	Unplaced []Booth `json:"unplaced"`
}

// Layout splits booths into placed and unplaced. Placed booths are ordered
// row-major by position; unplaced ones by booth number then company.
func Layout(grid Grid, booths []Booth) FloorPlan {
	fp := FloorPlan{Grid: grid, Placed: []Booth{}, Unplaced: []Booth{}}
	for _, b := range booths {
		if b.Placed() {
			fp.Placed = append(fp.Placed, b)
		} else {
			fp.Unplaced = append(fp.Unplaced, b)
		}
	}
	sort.SliceStable(fp.Placed, func(i, j int) bool {
		a, b := fp.Placed[i], fp.Placed[j]
		if *a.Y != *b.Y {
			return *a.Y < *b.Y
		}
		return *a.X < *b.X
	})
	sort.SliceStable(fp.Unplaced, func(i, j int) bool {
		a, b := fp.Unplaced[i], fp.Unplaced[j]
		if a.BoothNumber != b.BoothNumber {
			return a.BoothNumber < b.BoothNumber
		}
		return a.CompanyName < b.CompanyName
	})
	return fp
}
