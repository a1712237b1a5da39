package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Mohit-R-04/FarmToMarket/internal/utils"
)

func TestQuantitiesFitTheirColumns(t *testing.T) {
	create := CreateProductRequest{Name: "Rice", Quantity: 999999999.999, Unit: "kg", ProductionLocation: "Thanjavur"}
	assert.NoError(t, utils.ValidateStruct(create))

	create.Quantity = 1e9
	assert.Error(t, utils.ValidateStruct(create))

	assert.Error(t, utils.ValidateStruct(RecordSaleRequest{Quantity: 1e9}))
	assert.Error(t, utils.ValidateStruct(UpdateProductRequest{Quantity: 2e9}))
	assert.NoError(t, utils.ValidateStruct(UpdateProductRequest{}))
	assert.Error(t, utils.ValidateStruct(KilometersRequest{Kilometers: 1e8}))
	assert.NoError(t, utils.ValidateStruct(KilometersRequest{Kilometers: 42.5}))
}
