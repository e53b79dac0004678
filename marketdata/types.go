package marketdata

// SearchResult is one symbol-search hit.
type SearchResult struct {
	Symbol            string `json:"symbol"`
	Name              string `json:"name"`
	Currency          string `json:"currency,omitempty"`
	StockExchange     string `json:"stockExchange,omitempty"`
	ExchangeShortName string `json:"exchangeShortName,omitempty"`
}

// PricePoint is one daily close.
type PricePoint struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// Article is one news item. Empty fields mean the feed omitted them.
type Article struct {
	Symbol        string `json:"symbol,omitempty"`
	PublishedDate string `json:"publishedDate,omitempty"`
	Title         string `json:"title"`
	Image         string `json:"image,omitempty"`
	Site          string `json:"site,omitempty"`
	Text          string `json:"text,omitempty"`
	URL           string `json:"url"`
}

// Profile is the company fact sheet. Empty strings mean the provider had no
// value; callers must not invent one.
type Profile struct {
	Symbol            string  `json:"symbol"`
	CompanyName       string  `json:"companyName,omitempty"`
	Sector            string  `json:"sector,omitempty"`
	Industry          string  `json:"industry,omitempty"`
	CEO               string  `json:"ceo,omitempty"`
	Website           string  `json:"website,omitempty"`
	Description       string  `json:"description,omitempty"`
	FullTimeEmployees string  `json:"fullTimeEmployees,omitempty"`
	Exchange          string  `json:"exchangeShortName,omitempty"`
	Country           string  `json:"country,omitempty"`
	Image             string  `json:"image,omitempty"`
	Currency          string  `json:"currency,omitempty"`
	MktCap            float64 `json:"mktCap,omitempty"`
	Price             float64 `json:"price,omitempty"`
}
