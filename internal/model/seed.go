package model

// BranchSeed returns the default branch inventory fixture.
func BranchSeed() []Product {
	return []Product{
		{ID: 1, Name: "Organic Apples", UnitPrice: 2.50, Stock: 25},
		{ID: 2, Name: "Whole Wheat Bread", UnitPrice: 1.80, Stock: 15},
		{ID: 3, Name: "Lactose-Free Milk", UnitPrice: 3.20, Stock: 8},
		{ID: 4, Name: "Premium Coffee", UnitPrice: 8.90, Stock: 6},
		{ID: 5, Name: "Quinoa", UnitPrice: 12.50, Stock: 3},
	}
}

// CentralSeed returns the default chain-wide inventory fixture.
func CentralSeed() []Product {
	return []Product{
		{ID: 1, Name: "Organic Apples", UnitPrice: 2.50, Stock: 100},
		{ID: 2, Name: "Whole Wheat Bread", UnitPrice: 1.80, Stock: 50},
		{ID: 3, Name: "Lactose-Free Milk", UnitPrice: 3.20, Stock: 30},
		{ID: 4, Name: "Premium Coffee", UnitPrice: 8.90, Stock: 25},
		{ID: 5, Name: "Quinoa", UnitPrice: 12.50, Stock: 15},
	}
}
