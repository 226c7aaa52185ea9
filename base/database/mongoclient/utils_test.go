package mongoclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/adebusola-prog/auction-engine/base/ptr"
)

func TestMakeBsonM(t *testing.T) {
	type PatchableItem struct {
		Name        *string `bson:"name,omitempty"`
		Price       *int    `bson:"price,omitempty"`
		Description string  `bson:"description"`
		Sku         string  `bson:"sku"`
	}

	patchable := &PatchableItem{}
	patchable.Name = ptr.String("")
	patchable.Price = ptr.Int(10)
	patchable.Sku = "AB-1-XYZ"

	updater, err := MakeBsonM(patchable)

	assert.NoError(t, err)
	assert.Equal(
		t,
		bson.M{
			"name":  "",
			"price": 10,
			// field description is empty, so ignore
			"sku": "AB-1-XYZ",
		},
		updater,
	)
}
