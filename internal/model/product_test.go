package model

import "testing"

func TestProductValidate(t *testing.T) {
	details := &CardDetails{Set: "DMR", Number: "042", Rarity: "rare", Condition: "NM", Finish: "foil"}

	tests := []struct {
		name    string
		product Product
		wantErr bool
	}{
		{"single card", Product{ProductType: ProductSingleCard, UnitSize: 0, CardDetails: details}, false},
		{"single card with size", Product{ProductType: ProductSingleCard, UnitSize: 0.5, CardDetails: details}, true},
		{"single card without details", Product{ProductType: ProductSingleCard, UnitSize: 0}, true},
		{"booster pack", Product{ProductType: ProductBoosterPack, UnitSize: 0.2}, false},
		{"booster pack zero size", Product{ProductType: ProductBoosterPack, UnitSize: 0}, true},
		{"booster pack negative size", Product{ProductType: ProductBoosterPack, UnitSize: -1}, true},
		{"deck box with card details", Product{ProductType: ProductDeckBox, UnitSize: 1, CardDetails: details}, true},
		{"playmat", Product{ProductType: ProductPlaymat, UnitSize: 2}, false},
		{"unknown type", Product{ProductType: "foil", UnitSize: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.product.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInventoryRecordValidate(t *testing.T) {
	container := &CardContainer{
		ContainerType:     ContainerDisplayCase,
		ContainerName:     "Front case",
		ContainerUnitSize: 4,
		Items:             []CardContainerItem{{ProductID: "p1", Quantity: 2}},
	}

	tests := []struct {
		name    string
		record  InventoryRecord
		wantErr bool
	}{
		{"standard item", InventoryRecord{StoreID: "s1", ProductID: "p1", Quantity: 5, Location: LocationFloor}, false},
		{"container", InventoryRecord{StoreID: "s1", CardContainer: container}, false},
		{"both product and container", InventoryRecord{StoreID: "s1", ProductID: "p1", Quantity: 1, Location: LocationBack, CardContainer: container}, true},
		{"neither product nor container", InventoryRecord{StoreID: "s1", Quantity: 1, Location: LocationBack}, true},
		{"negative quantity", InventoryRecord{StoreID: "s1", ProductID: "p1", Quantity: -1, Location: LocationFloor}, true},
		{"bad location", InventoryRecord{StoreID: "s1", ProductID: "p1", Quantity: 1, Location: "attic"}, true},
		{"missing store", InventoryRecord{ProductID: "p1", Quantity: 1, Location: LocationFloor}, true},
		{"container zero footprint", InventoryRecord{StoreID: "s1", CardContainer: &CardContainer{ContainerType: ContainerBulkBin, ContainerUnitSize: 0}}, true},
		{"container bad type", InventoryRecord{StoreID: "s1", CardContainer: &CardContainer{ContainerType: "shoebox", ContainerUnitSize: 1}}, true},
		{"container zero card quantity", InventoryRecord{StoreID: "s1", CardContainer: &CardContainer{
			ContainerType: ContainerBulkBox, ContainerUnitSize: 1,
			Items: []CardContainerItem{{ProductID: "p1", Quantity: 0}},
		}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
