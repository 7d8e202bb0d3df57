package expiry

import (
	"sort"
	"strings"

	"lifecycle/entities"
)

type SortKey string

const (
	SortNone     SortKey = ""
	SortExpiry   SortKey = "expiry"
	SortName     SortKey = "name"
	SortCategory SortKey = "category"
	SortQuantity SortKey = "quantity"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortNone, SortExpiry, SortName, SortCategory, SortQuantity:
		return true
	}
	return false
}

// Sort reorders products in place. Expiry puts the earliest batch first and
// batchless products last; quantity applies the expiry order and then a
// stable sort by total units, largest first. SortNone keeps the input order.
func Sort(products []*entities.Product, key SortKey) {
	switch key {
	case SortName:
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
		})
	case SortCategory:
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Category) < strings.ToLower(products[j].Category)
		})
	case SortExpiry, SortQuantity:
		sort.SliceStable(products, func(i, j int) bool {
			a, aok := Earliest(products[i].Batches)
			b, bok := Earliest(products[j].Batches)
			switch {
			case aok && bok:
				return a < b
			case aok:
				return true
			default:
				return false
			}
		})
		if key == SortQuantity {
			sort.SliceStable(products, func(i, j int) bool {
				return TotalQuantity(products[i].Batches) > TotalQuantity(products[j].Batches)
			})
		}
	}
}
