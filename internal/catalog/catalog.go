// Package catalog holds the static service and vehicle-type tables the
// assistant offers. Loaded once at startup and consulted read-only.
package catalog

import (
	"fmt"
	"sort"
)

// Category groups services into booking package tiers.
type Category string

const (
	CategoryStandard Category = "standard"
	CategoryPremium  Category = "premium"
	CategoryAddon    Category = "addon"
)

// PackageType returns the customer-facing package label for a category.
func (c Category) PackageType() string {
	switch c {
	case CategoryPremium:
		return "Premium"
	case CategoryAddon:
		return "Additional"
	default:
		return "Standard"
	}
}

// Service is one offerable catalog item. Prices are keyed by vehicle-type ID;
// a missing key means the service is not offered for that vehicle type.
type Service struct {
	ID              string
	Name            string
	DurationMinutes int
	Prices          map[string]int
	Category        Category
}

// Catalog is the immutable service and vehicle-type table.
type Catalog struct {
	services     map[string]Service
	serviceIDs   []string
	vehicleTypes map[string]string
	vehicleIDs   []string
}

// New builds a catalog and validates its invariants: service IDs are unique
// and every price key names a known vehicle type.
func New(services []Service, vehicleTypes map[string]string) (*Catalog, error) {
	c := &Catalog{
		services:     make(map[string]Service, len(services)),
		serviceIDs:   make([]string, 0, len(services)),
		vehicleTypes: make(map[string]string, len(vehicleTypes)),
		vehicleIDs:   make([]string, 0, len(vehicleTypes)),
	}

	for id, name := range vehicleTypes {
		c.vehicleTypes[id] = name
		c.vehicleIDs = append(c.vehicleIDs, id)
	}
	sort.Strings(c.vehicleIDs)

	for _, svc := range services {
		if svc.ID == "" {
			return nil, fmt.Errorf("service with empty ID")
		}
		if _, dup := c.services[svc.ID]; dup {
			return nil, fmt.Errorf("duplicate service ID %q", svc.ID)
		}
		for vt := range svc.Prices {
			if _, ok := c.vehicleTypes[vt]; !ok {
				return nil, fmt.Errorf("service %q prices unknown vehicle type %q", svc.ID, vt)
			}
		}
		c.services[svc.ID] = svc
		c.serviceIDs = append(c.serviceIDs, svc.ID)
	}

	return c, nil
}

// Service looks up a service by ID.
func (c *Catalog) Service(id string) (Service, bool) {
	svc, ok := c.services[id]
	return svc, ok
}

// ServiceIDs returns service IDs in catalog declaration order.
func (c *Catalog) ServiceIDs() []string {
	out := make([]string, len(c.serviceIDs))
	copy(out, c.serviceIDs)
	return out
}

// VehicleTypeName returns the display name for a vehicle-type ID.
func (c *Catalog) VehicleTypeName(id string) (string, bool) {
	name, ok := c.vehicleTypes[id]
	return name, ok
}

// VehicleTypeIDs returns the closed set of vehicle-type IDs.
func (c *Catalog) VehicleTypeIDs() []string {
	out := make([]string, len(c.vehicleIDs))
	copy(out, c.vehicleIDs)
	return out
}
