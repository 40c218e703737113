package document

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names.
const (
	ProductsCollection = "products"
	UsersCollection    = "users"
	TestCollection     = "test_collection"
	PeopleCollection   = "people"
)

// Product is a catalog entry. Fields not modeled here travel in Extra.
type Product struct {
	ID            primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Description   string             `json:"description" bson:"description"`
	Price         float64            `json:"price" bson:"price"`
	Category      string             `json:"category" bson:"category"`
	InStock       bool               `json:"in_stock" bson:"in_stock"`
	StockQuantity int                `json:"stock_quantity" bson:"stock_quantity"`
	Tags          []string           `json:"tags" bson:"tags"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	Extra         map[string]any     `json:"-" bson:",inline"`
}

func (p Product) Document() Document {
	d := Document{
		"name":           p.Name,
		"description":    p.Description,
		"price":          p.Price,
		"category":       p.Category,
		"in_stock":       p.InStock,
		"stock_quantity": p.StockQuantity,
		"tags":           p.Tags,
		CreatedAtField:   p.CreatedAt,
	}
	return withExtra(d, p.ID, p.Extra)
}

// User is an application user record (not an authenticated principal).
type User struct {
	ID          primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Email       string             `json:"email" bson:"email"`
	Role        string             `json:"role" bson:"role"`
	Preferences []string           `json:"preferences" bson:"preferences"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	Extra       map[string]any     `json:"-" bson:",inline"`
}

func (u User) Document() Document {
	d := Document{
		"name":         u.Name,
		"email":        u.Email,
		"role":         u.Role,
		"preferences":  u.Preferences,
		CreatedAtField: u.CreatedAt,
	}
	return withExtra(d, u.ID, u.Extra)
}

// TestRecord is written by the database test endpoint.
type TestRecord struct {
	Message   string
	Timestamp time.Time
	PRNumber  string
}

func (r TestRecord) Document() Document {
	return Document{
		"message":   r.Message,
		"timestamp": r.Timestamp,
		"pr_number": r.PRNumber,
	}
}

// Person is the single-field record of the people collection.
type Person struct {
	Name string `bson:"name"`
}

func (p Person) Document() Document {
	return Document{"name": p.Name}
}

func withExtra(d Document, id primitive.ObjectID, extra map[string]any) Document {
	for k, v := range extra {
		if _, taken := d[k]; !taken {
			d[k] = v
		}
	}
	if !id.IsZero() {
		d[IDField] = id
	}
	return d
}

// SampleProducts returns the catalog inserted by the seed operation.
func SampleProducts(now time.Time) []Product {
	return []Product{
		{Name: `Laptop Pro 15"`, Description: "High-performance laptop with 16GB RAM and 512GB SSD", Price: 1299.99, Category: "Electronics", InStock: true, StockQuantity: 25, Tags: []string{"laptop", "computer", "portable"}, CreatedAt: now},
		{Name: "Wireless Headphones", Description: "Premium noise-cancelling wireless headphones", Price: 199.99, Category: "Audio", InStock: true, StockQuantity: 50, Tags: []string{"headphones", "wireless", "audio"}, CreatedAt: now},
		{Name: "Smart Watch Series 8", Description: "Advanced fitness tracking and health monitoring", Price: 399.99, Category: "Wearables", InStock: true, StockQuantity: 30, Tags: []string{"smartwatch", "fitness", "health"}, CreatedAt: now},
		{Name: "Coffee Maker Deluxe", Description: "Programmable coffee maker with built-in grinder", Price: 149.99, Category: "Kitchen", InStock: true, StockQuantity: 15, Tags: []string{"coffee", "kitchen", "appliance"}, CreatedAt: now},
		{Name: "Gaming Mouse RGB", Description: "High-precision gaming mouse with customizable RGB lighting", Price: 79.99, Category: "Gaming", InStock: false, StockQuantity: 0, Tags: []string{"gaming", "mouse", "rgb"}, CreatedAt: now},
		{Name: "Bluetooth Speaker", Description: "Portable waterproof speaker with 12-hour battery", Price: 89.99, Category: "Audio", InStock: true, StockQuantity: 40, Tags: []string{"speaker", "bluetooth", "portable"}, CreatedAt: now},
	}
}

// SampleUsers returns the users inserted by the seed operation.
func SampleUsers(now time.Time) []User {
	return []User{
		{Name: "Alice Johnson", Email: "alice@example.com", Role: "customer", Preferences: []string{"Electronics", "Gaming"}, CreatedAt: now},
		{Name: "Bob Smith", Email: "bob@example.com", Role: "customer", Preferences: []string{"Kitchen", "Audio"}, CreatedAt: now},
		{Name: "Carol Wilson", Email: "carol@example.com", Role: "admin", Preferences: []string{"Wearables", "Electronics"}, CreatedAt: now},
	}
}

// SamplePeople returns the fixed roster of the people collection.
func SamplePeople() []Person {
	return []Person{{Name: "Alice"}, {Name: "Bob"}, {Name: "Charlie"}, {Name: "Dev"}, {Name: "Mohit"}}
}
