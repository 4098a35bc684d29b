package domain

import "time"

// ItemKind identifies which catalog collection a cart reference points at.
// Parts and products live in separate collections and share no id space, so
// every cart and order operation carries the kind alongside the id.
type ItemKind string

const (
	KindPart    ItemKind = "part"
	KindProduct ItemKind = "product"
)

func (k ItemKind) Valid() bool {
	return k == KindPart || k == KindProduct
}

// CatalogRef is the identity of a catalog entry: id plus kind.
type CatalogRef struct {
	ID   string   `bson:"id" json:"id"`
	Kind ItemKind `bson:"kind" json:"kind"`
}

// Key returns the cart line identity. At most one line per key may exist.
func (r CatalogRef) Key() string {
	return string(r.Kind) + ":" + r.ID
}

// KindFromIsPart maps the wire-level is_part flag onto ItemKind.
func KindFromIsPart(isPart bool) ItemKind {
	if isPart {
		return KindPart
	}
	return KindProduct
}

type CartLine struct {
	Ref      CatalogRef `bson:"ref" json:"ref"`
	Name     string     `bson:"name" json:"name"`
	Brand    string     `bson:"brand,omitempty" json:"brand,omitempty"`
	Category string     `bson:"category,omitempty" json:"category,omitempty"`
	Price    float64    `bson:"price" json:"price"`
	Image    string     `bson:"image,omitempty" json:"image,omitempty"`
	Quantity int        `bson:"quantity" json:"quantity"`
	AddedAt  time.Time  `bson:"added_at" json:"added_at"`
}

type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"-"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Items     []CartLine `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// Find returns the line matching ref, or nil.
func (c *Cart) Find(ref CatalogRef) *CartLine {
	for i := range c.Items {
		if c.Items[i].Ref == ref {
			return &c.Items[i]
		}
	}
	return nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
