package models

// Collection names inside the food database.
const (
	FoodsCollection        = "foods"
	FoodRequestsCollection = "foodRequest"
)

// FoodRequestOwnerField is the food request field compared against the
// caller's email when listing requests.
const FoodRequestOwnerField = "userEmail"

// Document is a schema-flexible record. Food items and food requests are both
// stored as documents; "_id" carries the store-assigned identifier.
type Document map[string]any

// Fields accepted by PUT /food/{id}.
var FoodUpdateFields = []string{"name", "image", "location", "time", "notes"}

// Fields accepted by PUT /foodRequest/{id}.
var FoodRequestUpdateFields = []string{"status"}

// Pick builds the update document for an allow-list. Every listed field is
// present in the result; fields missing from doc are set to nil.
func Pick(doc Document, fields []string) Document {
	out := make(Document, len(fields))
	for _, f := range fields {
		out[f] = doc[f]
	}
	return out
}

type CountResponse struct {
	Count int64 `json:"count"`
}
