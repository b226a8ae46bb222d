package persistence

// OnDelete is what happens to referencing records when their target is deleted.
type OnDelete int

const (
	// Restrict refuses the delete while any referencing record exists.
	Restrict OnDelete = iota
	// Cascade deletes the referencing records too.
	Cascade
	// SetNull clears the referencing column.
	SetNull
)

// Reference is a column in Table holding the identifier of another record.
type Reference struct {
	Table    string
	Column   string
	OnDelete OnDelete
}

// references mirrors the foreign keys of the relational schema, keyed by the
// referenced table. The document store applies the same rules itself.
var references = map[string][]Reference{
	"users": {
		{Table: "tokens", Column: "user_id", OnDelete: Cascade},
		{Table: "categories", Column: "created_by", OnDelete: Restrict},
		{Table: "businesses", Column: "owner_id", OnDelete: Cascade},
		{Table: "orders", Column: "customer_id", OnDelete: Restrict},
		{Table: "reviews", Column: "user_id", OnDelete: Cascade},
	},
	"categories": {
		{Table: "categories", Column: "parent_category_id", OnDelete: SetNull},
		{Table: "items", Column: "category_id", OnDelete: SetNull},
	},
	"businesses": {
		{Table: "items", Column: "business_id", OnDelete: Cascade},
		{Table: "orders", Column: "business_id", OnDelete: Restrict},
		{Table: "reviews", Column: "business_id", OnDelete: Cascade},
	},
	"items": {
		{Table: "order_items", Column: "item_id", OnDelete: Restrict},
	},
	"orders": {
		{Table: "order_items", Column: "order_id", OnDelete: Cascade},
	},
}

// ReferencesTo returns the references pointing at records of table.
func ReferencesTo(table string) []Reference {
	return references[table]
}
