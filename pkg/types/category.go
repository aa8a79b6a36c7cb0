package types

// Category groups rules for organizational lookup. Categories are never
// emitted in results; output is keyed by Label.
type Category string

const (
	CategoryCrypto  Category = "crypto"
	CategoryFile    Category = "file"
	CategoryHash    Category = "hash"
	CategoryMisc    Category = "misc"
	CategoryNetwork Category = "network"
	CategoryPII     Category = "pii"
	CategoryScript  Category = "script"
	CategoryWeb     Category = "web"
)

// Categories returns all known categories in stable order.
func Categories() []Category {
	return []Category{
		CategoryCrypto,
		CategoryFile,
		CategoryHash,
		CategoryMisc,
		CategoryNetwork,
		CategoryPII,
		CategoryScript,
		CategoryWeb,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryCrypto, CategoryFile, CategoryHash, CategoryMisc,
		CategoryNetwork, CategoryPII, CategoryScript, CategoryWeb:
		return true
	}
	return false
}
