package importer

import (
	"fmt"
	"sort"
	"sync"
)

// Registration describes one provider available to the import pipeline:
// its identity, the CSV columns it understands, and how to construct its
// strategy.
type Registration struct {
	Type    ProviderType
	Label   string
	Columns []string
	New     func(imp *Importer) Provider
}

var (
	registry   = make(map[ProviderType]Registration)
	registryMu sync.RWMutex
)

// Register adds a provider registration.
// Panics if the provider type is already registered.
func Register(reg Registration) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[reg.Type]; exists {
		panic(fmt.Sprintf("provider already registered: %s", reg.Type))
	}

	registry[reg.Type] = reg
}

// Lookup returns a provider registration by type.
// Returns false if not registered.
func Lookup(t ProviderType) (Registration, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	reg, ok := registry[t]
	return reg, ok
}

// All returns every registered provider, sorted by type for consistent
// ordering.
func All() []Registration {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Registration, 0, len(registry))
	for _, reg := range registry {
		result = append(result, reg)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Type < result[j].Type
	})

	return result
}

// defaultColumns is the canonical column set shared by every provider.
var defaultColumns = []string{
	ColEventName,
	ColTicketName,
	ColAttendeeName,
	ColEmail,
	ColOptIn,
	ColUserID,
	ColOrderID,
	ColSendEmail,
}

func withColumns(extra ...string) []string {
	cols := make([]string, 0, len(defaultColumns)+len(extra))
	cols = append(cols, defaultColumns...)
	cols = append(cols, extra...)
	return cols
}

func init() {
	Register(Registration{
		Type:    ProviderRSVP,
		Label:   "RSVP",
		Columns: withColumns(ColGoing),
		New:     newRSVPProvider,
	})
	Register(Registration{
		Type:    ProviderPayPal,
		Label:   "PayPal",
		Columns: withColumns(ColOrderStatus, ColRefundOrder),
		New:     newPayPalProvider,
	})
	Register(Registration{
		Type:    ProviderEDD,
		Label:   "Easy Digital Downloads",
		Columns: withColumns(ColOrderStatus),
		New:     newEDDProvider,
	})
	Register(Registration{
		Type:    ProviderWooCommerce,
		Label:   "WooCommerce",
		Columns: withColumns(ColOrderStatus),
		New:     newWooProvider,
	})
}
