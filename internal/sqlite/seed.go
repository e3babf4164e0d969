// Demo data seeding for first-run setups.
package sqlite

import (
	"fmt"

	"github.com/brightmill/storefront/pkg/catalog"
)

// demoEntity describes one record seeded into the demo store. Reference
// fields name earlier entries by seed key instead of record id.
type demoEntity struct {
	key    string
	kind   catalog.Kind
	fields catalog.Fields
	refs   map[string]string // field → seed key
}

// demoStoreName is the store created by SeedDemo.
const demoStoreName = "Demo Outfitters"

// demoEntities is seeded in order; products reference the earlier rows.
var demoEntities = []demoEntity{
	{
		key:    "billboard-spring",
		kind:   catalog.KindBillboard,
		fields: catalog.Fields{"label": "Spring Collection", "imageUrl": "https://images.example.com/billboards/spring.png"},
	},
	{
		key:    "category-hats",
		kind:   catalog.KindCategory,
		fields: catalog.Fields{"name": "Hats"},
		refs:   map[string]string{"billboardId": "billboard-spring"},
	},
	{
		key:    "size-m",
		kind:   catalog.KindSize,
		fields: catalog.Fields{"name": "Medium", "value": "M"},
	},
	{
		key:    "color-forest",
		kind:   catalog.KindColor,
		fields: catalog.Fields{"name": "Forest", "value": "#228b22"},
	},
	{
		key:  "product-beanie",
		kind: catalog.KindProduct,
		fields: catalog.Fields{
			"name":       "Wool Beanie",
			"price":      "24.99",
			"images":     []string{"https://images.example.com/products/beanie.png"},
			"isFeatured": true,
			"isArchived": false,
		},
		refs: map[string]string{
			"categoryId": "category-hats",
			"sizeId":     "size-m",
			"colorId":    "color-forest",
		},
	},
}

// SeedDemo creates a demo store with one record of every kind. Seeding only
// runs when no stores exist yet; otherwise the catalog is left untouched
// and the existing first store's id is returned.
func SeedDemo(cat catalog.Catalog) (string, error) {
	stores, err := cat.Collection(catalog.KindStore)
	if err != nil {
		return "", err
	}

	existing, err := stores.List(catalog.Query{})
	if err != nil {
		return "", fmt.Errorf("checking for existing stores: %w", err)
	}
	if len(existing) > 0 {
		return existing[len(existing)-1].ID, nil
	}

	storeID, err := stores.Put("", catalog.Record{
		Kind:   catalog.KindStore,
		Fields: catalog.Fields{"name": demoStoreName},
	})
	if err != nil {
		return "", fmt.Errorf("seeding store: %w", err)
	}

	ids := make(map[string]string, len(demoEntities))
	for _, entity := range demoEntities {
		col, err := cat.Collection(entity.kind)
		if err != nil {
			return "", err
		}

		fields := entity.fields.Clone()
		for field, key := range entity.refs {
			refID, ok := ids[key]
			if !ok {
				return "", fmt.Errorf("seed entry %s references unknown key %s", entity.key, key)
			}
			fields[field] = refID
		}

		id, err := col.Put("", catalog.Record{
			StoreID: storeID,
			Kind:    entity.kind,
			Fields:  fields,
		})
		if err != nil {
			return "", fmt.Errorf("seeding %s: %w", entity.key, err)
		}
		ids[entity.key] = id
	}

	return storeID, nil
}
