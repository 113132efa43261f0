package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/medaimane/AthleticEdge/internal/entity"
)

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sale(s string) decimal.NullDecimal { return decimal.NewNullDecimal(price(s)) }

func stock(n int) *int { return &n }

func img(photo string) string {
	return "https://images.unsplash.com/photo-" + photo + "?w=500&h=500&fit=crop"
}

var (
	shoeSizesMen = []string{"7", "8", "9", "10", "11", "12"}
	apparelSizes = []string{"S", "M", "L", "XL", "XXL"}
	seededAt     = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
)

// SeedProducts returns the starter catalog. Ids are stable so carts and
// orders survive a restart against a persistent store.
func SeedProducts() []entity.Product {
	products := []entity.Product{
		{ID: "prod-001", Name: "Air Zoom SuperRep", Brand: "Nike", Price: price("129.99"), Description: "Nike Air Zoom SuperRep is designed for circuit training, HIIT, and other fast-paced exercise. Zoom Air cushioning in the forefoot combined with a wide, stable heel offers comfort and stability for cardio and squats alike.", ImageURL: img("1606107557195-0e29a4b5b4aa"), Images: []string{img("1606107557195-0e29a4b5b4aa"), img("1600185365483-26d7a4cc7519"), img("1491553895911-0055eca6402d")}, Category: "men", Type: "shoes", Sport: "training", Rating: 4.5, ReviewCount: 128, Badge: entity.BadgeNew, Stock: stock(25), Sizes: shoeSizesMen, Colors: []string{"#000000", "#ffffff", "#ff0000"}, Featured: true, BestSeller: true},
		{ID: "prod-002", Name: "Ultraboost 21", Brand: "Adidas", Price: price("179.99"), Description: "The Adidas Ultraboost 21 delivers incredible energy return. The shoe features a BOOST midsole and a Primeknit upper that wraps the foot with a supportive fit to enhance movement.", ImageURL: img("1608231387042-66d1773070a5"), Images: []string{img("1608231387042-66d1773070a5"), img("1587563871167-1ee9c731aefb")}, Category: "men", Type: "shoes", Sport: "running", Rating: 5, ReviewCount: 208, Badge: entity.BadgePopular, Stock: stock(18), Sizes: shoeSizesMen, Colors: []string{"#000000", "#0000ff", "#ff0000"}, Featured: true, BestSeller: true},
		{ID: "prod-003", Name: "HOVR Phantom 2", Brand: "Under Armour", Price: price("149.99"), Description: "UA HOVR technology provides 'zero gravity feel' to maintain energy return and helps eliminate impact. Compression mesh Energy Web contains and molds UA HOVR foam to give back the energy you put in.", ImageURL: img("1554568218-0f1715e72254"), Category: "men", Type: "shoes", Sport: "running", Rating: 4, ReviewCount: 94, Stock: stock(12), Sizes: shoeSizesMen, Colors: []string{"#000000", "#ffffff", "#ff0000", "#00ff00"}, BestSeller: true},
		{ID: "prod-004", Name: "RS-X³ Puzzle", Brand: "Puma", Price: price("119.99"), Description: "Taking design cues from the ever-changing puzzle of life, these RS-X³ Puzzle shoes feature a mesh and synthetic leather upper, bold color-blocking, and iconic RS cushioning in the midsole.", ImageURL: img("1593081891731-fda0877988da"), Category: "men", Type: "shoes", Sport: "lifestyle", Rating: 3.5, ReviewCount: 76, Badge: entity.BadgeOnlyXLeft, Stock: stock(3), Sizes: []string{"7", "8", "9", "10", "11"}, Colors: []string{"#000000", "#ffffff", "#0000ff"}, BestSeller: true},
		{ID: "prod-005", Name: "Dri-FIT Men's Training T-Shirt", Brand: "Nike", Price: price("35.99"), Description: "The Nike Dri-FIT Men's Training T-Shirt delivers a soft feel, sweat-wicking performance and excellent range of motion to get you through your workout in total comfort.", ImageURL: img("1581655353564-df123a1eb820"), Category: "men", Type: "apparel", Sport: "training", Rating: 4.8, ReviewCount: 156, Sizes: apparelSizes, Colors: []string{"#000000", "#ffffff", "#ff0000", "#0000ff"}, BestSeller: true},
		{ID: "prod-006", Name: "Cloudfoam Pure Shoes", Brand: "Adidas", Price: price("89.99"), Description: "These women's running-inspired shoes feature a foot-hugging knit upper and a female-friendly fit. Pillow-soft Cloudfoam cushioning in the midsole and outsole offers enhanced comfort.", ImageURL: img("1560769629-975ec94e6a86"), Category: "women", Type: "shoes", Sport: "running", Rating: 4.9, ReviewCount: 287, Badge: entity.BadgePopular, Sizes: []string{"5", "6", "7", "8", "9", "10"}, Colors: []string{"#ffffff", "#ff00ff", "#0000ff"}, Featured: true, BestSeller: true},
		{ID: "prod-007", Name: "Women's UA Fly-By 2.0 Shorts", Brand: "Under Armour", Price: price("29.99"), SalePrice: sale("24.99"), Description: "These lightweight women's running shorts feature a soft, stretchy woven fabric that delivers superior comfort and durability with strategic mesh panels for added ventilation.", ImageURL: img("1548286978-f218023f8d18"), Category: "women", Type: "apparel", Sport: "running", Rating: 4.7, ReviewCount: 183, Sizes: []string{"XS", "S", "M", "L", "XL"}, Colors: []string{"#000000", "#ff00ff", "#0000ff"}, BestSeller: true},
		{ID: "prod-008", Name: "Kid's Zoom Pegasus 38", Brand: "Nike", Price: price("85.99"), Description: "The Nike Zoom Pegasus 38 is built for young runners. It helps kids feel comfortable and confident when they run, walk and play.", ImageURL: img("1551107696-a4b0c5a0d9a2"), Category: "kids", Type: "shoes", Sport: "running", Rating: 4.6, ReviewCount: 92, Badge: entity.BadgeNew, Sizes: []string{"3", "4", "5", "6", "7"}, Colors: []string{"#ff0000", "#0000ff", "#00ff00"}, Featured: true},
		{ID: "prod-009", Name: "Workout Ready Tech Tee", Brand: "Reebok", Price: price("25.99"), SalePrice: sale("19.99"), Description: "This men's training tee is designed to help keep you cool and comfortable when your workout heats up. The lightweight, sweat-wicking fabric breathes to help keep you dry.", ImageURL: img("1618354691373-d851c5c3a990"), Category: "men", Type: "apparel", Sport: "training", Rating: 4.4, ReviewCount: 108, Sizes: apparelSizes, Colors: []string{"#000000", "#ffffff", "#808080"}},
		{ID: "prod-010", Name: "Training Duffle Bag", Brand: "Nike", Price: price("45.99"), Description: "The Nike Training Duffle Bag features a spacious main compartment with a water-resistant bottom to help keep your gear clean and dry. Multiple pockets help you stay organized.", ImageURL: img("1553062407-98eeb64c6a62"), Category: "accessories", Type: "accessories", Sport: "training", Rating: 4.2, ReviewCount: 65, Colors: []string{"#000000", "#0000ff", "#ff0000"}},
		{ID: "prod-011", Name: "Mercurial Vapor 14 Elite", Brand: "Nike", Price: price("249.99"), Description: "The Nike Mercurial Vapor 14 Elite FG features a new look with specialized components to let you play your fastest from start to finish.", ImageURL: img("1542291026-7eec264c27ff"), Category: "men", Type: "shoes", Sport: "soccer", Rating: 4.9, ReviewCount: 216, Sizes: shoeSizesMen, Colors: []string{"#ff0000", "#00ff00", "#0000ff"}, Featured: true},
		{ID: "prod-012", Name: "Pro Basketball Shorts", Brand: "Adidas", Price: price("39.99"), Description: "Designed for the basketball court, these men's shorts are made of lightweight, breathable fabric to keep you cool through all four quarters.", ImageURL: img("1515886657613-9f3515b0c78f"), Category: "men", Type: "apparel", Sport: "basketball", Rating: 4.5, ReviewCount: 78, Sizes: apparelSizes, Colors: []string{"#000000", "#ff0000", "#0000ff"}},
	}
	for i := range products {
		products[i].CreatedAt = seededAt
	}
	return products
}
