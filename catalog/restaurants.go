package catalog

import "github.com/bhakti-thakur/Dine-o-saur/models"

// 內建餐廳清單，外部查詢失敗且沒有快取時使用
var builtinRestaurants = []models.Restaurant{
	{
		ID:         "1",
		Name:       "Spice Garden",
		Image:      "https://images.unsplash.com/photo-1517248135467-4c7edcad34c4?w=400",
		Rating:     4.5,
		Cuisine:    "Indian",
		Address:    "123 Main St, Downtown",
		Website:    "https://spicegarden.com",
		PriceRange: "$$",
		Tags:       []string{"indian", "spicy", "vegetarian"},
	},
	{
		ID:         "2",
		Name:       "Sakura Sushi",
		Image:      "https://images.unsplash.com/photo-1579584425555-c3ce17fd4351?w=400",
		Rating:     4.8,
		Cuisine:    "Japanese",
		Address:    "456 Oak Ave, Midtown",
		Website:    "https://sakurasushi.com",
		PriceRange: "$$$",
		Tags:       []string{"japanese", "savory", "umami"},
	},
	{
		ID:         "3",
		Name:       "Taco Fiesta",
		Image:      "https://images.unsplash.com/photo-1565299585323-38d6b0865b47?w=400",
		Rating:     4.2,
		Cuisine:    "Mexican",
		Address:    "789 Pine St, Westside",
		Website:    "https://tacofiesta.com",
		PriceRange: "$",
		Tags:       []string{"mexican", "spicy", "savory"},
	},
	{
		ID:         "4",
		Name:       "Bella Italia",
		Image:      "https://images.unsplash.com/photo-1555396273-367ea4eb4db5?w=400",
		Rating:     4.6,
		Cuisine:    "Italian",
		Address:    "321 Elm St, Eastside",
		Website:    "https://bellaitalia.com",
		PriceRange: "$$",
		Tags:       []string{"italian", "savory", "vegetarian"},
	},
	{
		ID:         "5",
		Name:       "Golden Dragon",
		Image:      "https://images.unsplash.com/photo-1553621042-f6e147245754?w=400",
		Rating:     4.4,
		Cuisine:    "Chinese",
		Address:    "654 Maple Dr, Chinatown",
		Website:    "https://goldendragon.com",
		PriceRange: "$$",
		Tags:       []string{"chinese", "savory", "umami"},
	},
	{
		ID:         "6",
		Name:       "Burger Haven",
		Image:      "https://images.unsplash.com/photo-1550547660-d9450f859349?w=400",
		Rating:     4.1,
		Cuisine:    "American",
		Address:    "101 Burger Ln, Uptown",
		Website:    "https://burgerhaven.com",
		PriceRange: "$",
		Tags:       []string{"american", "savory"},
	},
	{
		ID:         "7",
		Name:       "Green Leaf",
		Image:      "https://images.unsplash.com/photo-1504674900247-0877df9cc836?w=400",
		Rating:     4.7,
		Cuisine:    "Mediterranean",
		Address:    "202 Olive Rd, Midtown",
		Website:    "https://greenleaf.com",
		PriceRange: "$$",
		Tags:       []string{"mediterranean", "vegetarian", "vegan"},
	},
	{
		ID:         "8",
		Name:       "Parisian Delights",
		Image:      "https://images.unsplash.com/photo-1464306076886-debca5e8a6b0?w=400",
		Rating:     4.3,
		Cuisine:    "French",
		Address:    "303 Baguette St, Downtown",
		Website:    "https://parisiandelights.com",
		PriceRange: "$$$",
		Tags:       []string{"french", "sweet", "vegetarian"},
	},
	{
		ID:         "9",
		Name:       "Seoul Food",
		Image:      "https://images.unsplash.com/photo-1504674900247-ec6b0b1b7a6b?w=400",
		Rating:     4.5,
		Cuisine:    "Korean",
		Address:    "404 Kimchi Ave, Koreatown",
		Website:    "https://seoulfood.com",
		PriceRange: "$$",
		Tags:       []string{"korean", "spicy", "umami"},
	},
	{
		ID:         "10",
		Name:       "Bangkok Bites",
		Image:      "https://images.unsplash.com/photo-1502741338009-cac2772e18bc?w=400",
		Rating:     4.2,
		Cuisine:    "Thai",
		Address:    "505 Lemongrass Blvd, Eastside",
		Website:    "https://bangkokbites.com",
		PriceRange: "$$",
		Tags:       []string{"thai", "spicy", "sour"},
	},
	{
		ID:         "11",
		Name:       "Vegan Vibes",
		Image:      "https://images.unsplash.com/photo-1467003909585-2f8a72700288?w=400",
		Rating:     4.9,
		Cuisine:    "Vegan",
		Address:    "606 Plant St, Midtown",
		Website:    "https://veganvibes.com",
		PriceRange: "$$",
		Tags:       []string{"vegan", "vegetarian", "gluten-free"},
	},
	{
		ID:         "12",
		Name:       "Falafel House",
		Image:      "https://images.unsplash.com/photo-1504674900247-ec6b0b1b7a6b?w=400",
		Rating:     4.0,
		Cuisine:    "Mediterranean",
		Address:    "707 Chickpea Dr, Downtown",
		Website:    "https://falafelhouse.com",
		PriceRange: "$",
		Tags:       []string{"mediterranean", "vegetarian", "halal"},
	},
	{
		ID:         "13",
		Name:       "Pizza Palace",
		Image:      "https://images.unsplash.com/photo-1513104890138-7c749659a591?w=400",
		Rating:     4.6,
		Cuisine:    "Italian",
		Address:    "808 Mozzarella Ln, Westside",
		Website:    "https://pizzapalace.com",
		PriceRange: "$$",
		Tags:       []string{"italian", "savory", "vegetarian"},
	},
	{
		ID:         "14",
		Name:       "Tandoori Nights",
		Image:      "https://images.unsplash.com/photo-1504674900247-ec6b0b1b7a6b?w=400",
		Rating:     4.3,
		Cuisine:    "Indian",
		Address:    "909 Curry St, Downtown",
		Website:    "https://tandoorinights.com",
		PriceRange: "$$",
		Tags:       []string{"indian", "spicy", "halal"},
	},
	{
		ID:         "15",
		Name:       "Sushi Zen",
		Image:      "https://images.unsplash.com/photo-1519864600265-abb23847ef2c?w=400",
		Rating:     4.8,
		Cuisine:    "Japanese",
		Address:    "1010 Sashimi Ave, Midtown",
		Website:    "https://sushizen.com",
		PriceRange: "$$$",
		Tags:       []string{"japanese", "umami", "gluten-free"},
	},
	{
		ID:         "16",
		Name:       "Tortilla Town",
		Image:      "https://images.unsplash.com/photo-1504674900247-ec6b0b1b7a6b?w=400",
		Rating:     4.1,
		Cuisine:    "Mexican",
		Address:    "1111 Salsa Rd, Westside",
		Website:    "https://tortillatown.com",
		PriceRange: "$",
		Tags:       []string{"mexican", "spicy", "vegetarian"},
	},
	{
		ID:         "17",
		Name:       "Dragon Wok",
		Image:      "https://images.unsplash.com/photo-1504674900247-ec6b0b1b7a6b?w=400",
		Rating:     4.4,
		Cuisine:    "Chinese",
		Address:    "1212 Bamboo Dr, Chinatown",
		Website:    "https://dragonwok.com",
		PriceRange: "$$",
		Tags:       []string{"chinese", "umami", "halal"},
	},
	{
		ID:         "18",
		Name:       "Crepe Corner",
		Image:      "https://images.unsplash.com/photo-1464306076886-debca5e8a6b0?w=400",
		Rating:     4.2,
		Cuisine:    "French",
		Address:    "1313 Paris St, Downtown",
		Website:    "https://crepecorner.com",
		PriceRange: "$$",
		Tags:       []string{"french", "sweet", "vegetarian"},
	},
	{
		ID:         "19",
		Name:       "Kimchi Kitchen",
		Image:      "https://images.unsplash.com/photo-1504674900247-ec6b0b1b7a6b?w=400",
		Rating:     4.5,
		Cuisine:    "Korean",
		Address:    "1414 Seoul Ave, Koreatown",
		Website:    "https://kimchikitchen.com",
		PriceRange: "$$",
		Tags:       []string{"korean", "spicy", "umami"},
	},
	{
		ID:         "20",
		Name:       "Pad Thai Express",
		Image:      "https://images.unsplash.com/photo-1502741338009-cac2772e18bc?w=400",
		Rating:     4.3,
		Cuisine:    "Thai",
		Address:    "1515 Noodle St, Eastside",
		Website:    "https://padthaiexpress.com",
		PriceRange: "$$",
		Tags:       []string{"thai", "spicy", "sour"},
	},
	{
		ID:         "21",
		Name:       "Veggie Delight",
		Image:      "https://images.unsplash.com/photo-1467003909585-2f8a72700288?w=400",
		Rating:     4.7,
		Cuisine:    "Vegan",
		Address:    "1616 Greenway, Midtown",
		Website:    "https://veggiedelight.com",
		PriceRange: "$$",
		Tags:       []string{"vegan", "vegetarian", "gluten-free"},
	},
	{
		ID:         "22",
		Name:       "Shawarma Stop",
		Image:      "https://images.unsplash.com/photo-1504674900247-ec6b0b1b7a6b?w=400",
		Rating:     4.0,
		Cuisine:    "Mediterranean",
		Address:    "1717 Pita Pl, Downtown",
		Website:    "https://shawarmastop.com",
		PriceRange: "$",
		Tags:       []string{"mediterranean", "halal", "savory"},
	},
	{
		ID:         "23",
		Name:       "Pasta Point",
		Image:      "https://images.unsplash.com/photo-1513104890138-7c749659a591?w=400",
		Rating:     4.6,
		Cuisine:    "Italian",
		Address:    "1818 Penne Rd, Westside",
		Website:    "https://pastapoint.com",
		PriceRange: "$$",
		Tags:       []string{"italian", "savory", "vegetarian"},
	},
	{
		ID:         "24",
		Name:       "Curry House",
		Image:      "https://images.unsplash.com/photo-1504674900247-ec6b0b1b7a6b?w=400",
		Rating:     4.3,
		Cuisine:    "Indian",
		Address:    "1919 Masala St, Downtown",
		Website:    "https://curryhouse.com",
		PriceRange: "$$",
		Tags:       []string{"indian", "spicy", "halal"},
	},
	{
		ID:         "25",
		Name:       "Tempura Town",
		Image:      "https://images.unsplash.com/photo-1519864600265-abb23847ef2c?w=400",
		Rating:     4.8,
		Cuisine:    "Japanese",
		Address:    "2020 Tempura Ave, Midtown",
		Website:    "https://tempuratown.com",
		PriceRange: "$$$",
		Tags:       []string{"japanese", "umami", "gluten-free"},
	},
	{
		ID:         "26",
		Name:       "Burrito Bros",
		Image:      "https://images.unsplash.com/photo-1504674900247-ec6b0b1b7a6b?w=400",
		Rating:     4.1,
		Cuisine:    "Mexican",
		Address:    "2121 Salsa Rd, Westside",
		Website:    "https://burritobros.com",
		PriceRange: "$",
		Tags:       []string{"mexican", "spicy", "vegetarian"},
	},
	{
		ID:         "27",
		Name:       "Lotus Garden",
		Image:      "https://images.unsplash.com/photo-1504674900247-ec6b0b1b7a6b?w=400",
		Rating:     4.4,
		Cuisine:    "Chinese",
		Address:    "2222 Lotus Dr, Chinatown",
		Website:    "https://lotusgarden.com",
		PriceRange: "$$",
		Tags:       []string{"chinese", "umami", "halal"},
	},
	{
		ID:         "28",
		Name:       "Bistro Belle",
		Image:      "https://images.unsplash.com/photo-1464306076886-debca5e8a6b0?w=400",
		Rating:     4.2,
		Cuisine:    "French",
		Address:    "2323 Paris St, Downtown",
		Website:    "https://bistrobelle.com",
		PriceRange: "$$",
		Tags:       []string{"french", "sweet", "vegetarian"},
	},
	{
		ID:         "29",
		Name:       "Bibimbap Bowl",
		Image:      "https://images.unsplash.com/photo-1504674900247-ec6b0b1b7a6b?w=400",
		Rating:     4.5,
		Cuisine:    "Korean",
		Address:    "2424 Seoul Ave, Koreatown",
		Website:    "https://bibimbapbowl.com",
		PriceRange: "$$",
		Tags:       []string{"korean", "spicy", "umami"},
	},
	{
		ID:         "30",
		Name:       "Noodle Nook",
		Image:      "https://images.unsplash.com/photo-1502741338009-cac2772e18bc?w=400",
		Rating:     4.3,
		Cuisine:    "Thai",
		Address:    "2525 Noodle St, Eastside",
		Website:    "https://noodlenook.com",
		PriceRange: "$$",
		Tags:       []string{"thai", "spicy", "sour"},
	},
}

// Restaurants 回傳內建餐廳清單 (副本)
func Restaurants() []models.Restaurant {
	return cloneRestaurants(builtinRestaurants)
}

func cloneRestaurants(in []models.Restaurant) []models.Restaurant {
	out := make([]models.Restaurant, len(in))
	for i, r := range in {
		r.Tags = append([]string(nil), r.Tags...)
		out[i] = r
	}
	return out
}
