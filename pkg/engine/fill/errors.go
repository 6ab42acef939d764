package fill

import (
	"errors"
	"fmt"

	"wwrando/pkg/engine/world"
)

// Placement failures
var (
	ErrNoReachableLocation    = errors.New("no reachable empty location")
	ErrMoreItemsThanLocations = errors.New("more items than locations")
)

// PlacementError names the item that could not be placed
type PlacementError struct {
	Item world.Item
	Name string
	Err  error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("placing %s (world %d): %v", e.Name, e.Item.World, e.Err)
}

func (e *PlacementError) Unwrap() error {
	return e.Err
}

func placementError(worlds []*world.World, it world.Item, err error) error {
	name := it.String()
	if it.World >= 0 && it.World < len(worlds) {
		name = worlds[it.World].ItemName(it.ID)
	}
	return &PlacementError{Item: it, Name: name, Err: err}
}
