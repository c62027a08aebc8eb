package http

import "bazaar/marketplace/internal/model"

// DemoCatalog is the default fallback dataset served when the product store
// is empty or unreachable. Demo products carry no seller id and can never be
// mutated through the seller routes.
func DemoCatalog() []model.Product {
	return []model.Product{
		{
			ID:                 "demo-1",
			Title:              "Apple iPhone 15 Pro Max - 256GB - Natural Titanium",
			Price:              1199.99,
			Category:           "electronics",
			ImageURL:           "https://via.placeholder.com/300x300?text=iPhone+15",
			ProductDescription: "The latest iPhone with the A17 Pro chip and a titanium frame.",
			CompanyDescription: "Demo catalog item.",
			Brand:              "Apple",
			CountInStock:       10,
			Rating:             4.5,
			NumReviews:         2847,
		},
		{
			ID:                 "demo-2",
			Title:              "Sony WH-1000XM5 Wireless Noise Canceling Headphones",
			Price:              349.99,
			Category:           "electronics",
			ImageURL:           "https://via.placeholder.com/300x300?text=Sony+Headphones",
			ProductDescription: "Industry-leading noise cancellation with 30 hour battery life.",
			CompanyDescription: "Demo catalog item.",
			Brand:              "Sony",
			CountInStock:       25,
			Rating:             4.8,
			NumReviews:         5623,
		},
		{
			ID:                 "demo-3",
			Title:              "Samsung 65\" Class OLED 4K Smart TV",
			Price:              1799.99,
			Category:           "electronics",
			ImageURL:           "https://via.placeholder.com/300x300?text=Samsung+TV",
			ProductDescription: "Stunning OLED display with quantum HDR and smart hub.",
			CompanyDescription: "Demo catalog item.",
			Brand:              "Samsung",
			CountInStock:       5,
			Rating:             4.7,
			NumReviews:         1234,
		},
		{
			ID:                 "demo-4",
			Title:              "Nike Air Max 270 Running Shoes",
			Price:              159.99,
			Category:           "fashion",
			ImageURL:           "https://via.placeholder.com/300x300?text=Nike+Shoes",
			ProductDescription: "Comfortable running shoes with a large air unit in the heel.",
			CompanyDescription: "Demo catalog item.",
			Brand:              "Nike",
			CountInStock:       50,
			Rating:             4.3,
			NumReviews:         892,
		},
		{
			ID:                 "demo-5",
			Title:              "The Complete JavaScript Course 2024",
			Price:              49.99,
			Category:           "books",
			ImageURL:           "https://via.placeholder.com/300x300?text=JS+Book",
			ProductDescription: "Learn JavaScript from scratch with projects and exercises.",
			CompanyDescription: "Demo catalog item.",
			Brand:              "Tech Books",
			CountInStock:       100,
			Rating:             4.9,
			NumReviews:         3421,
		},
		{
			ID:                 "demo-6",
			Title:              "Instant Pot Duo 7-in-1 Electric Pressure Cooker",
			Price:              89.99,
			Category:           "home",
			ImageURL:           "https://via.placeholder.com/300x300?text=Instant+Pot",
			ProductDescription: "Multi-functional cooker that replaces seven kitchen appliances.",
			CompanyDescription: "Demo catalog item.",
			Brand:              "Instant Pot",
			CountInStock:       30,
			Rating:             4.6,
			NumReviews:         7854,
		},
	}
}
