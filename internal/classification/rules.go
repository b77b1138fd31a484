package classification

// DefaultCategory is the bucket for transactions nothing else claims.
const DefaultCategory = "Other"

// DefaultRules returns the stock rule list in evaluation order. Order is
// load-bearing: "uber eats" must land in Dining before Transport sees
// "uber", and streaming services must win before generic retail keywords.
func DefaultRules() []Rule {
	return []Rule{
		{
			Category: "Groceries",
			Keywords: []string{
				"whole foods", "trader joe", "safeway", "kroger", "aldi",
				"wegmans", "publix", "heb", "food lion", "grocery",
				"groceries", "supermarket",
			},
		},
		{
			Category: "Dining",
			Keywords: []string{
				"uber eats", "doordash", "grubhub", "postmates", "mcdonald",
				"starbucks", "chipotle", "taco bell", "subway", "dunkin",
				"restaurant", "dining", "pizza", "cafe", "coffee", "deli",
			},
		},
		{
			Category: "Gas",
			Keywords: []string{
				"shell", "chevron", "exxon", "mobil", "sunoco", "valero",
				"marathon", "speedway", "gas", "fuel",
			},
		},
		{
			Category: "Transport",
			Keywords: []string{
				"uber", "lyft", "transit", "metro", "amtrak", "mta",
				"parking", "toll", "taxi",
			},
		},
		{
			Category: "Subscriptions",
			Keywords: []string{
				"netflix", "spotify", "hulu", "disney", "hbo", "paramount",
				"peacock", "apple.com", "icloud", "youtube", "audible",
				"prime video", "dropbox", "adobe", "subscription",
			},
		},
		{
			Category: "Shopping",
			Keywords: []string{
				"amazon", "amzn", "walmart", "target", "costco", "best buy",
				"ebay", "etsy", "ikea", "nordstrom", "macys", "home depot",
				"lowes", "shopping",
			},
		},
	}
}
