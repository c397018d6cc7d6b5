package bitquery

// feedResponse mirrors the shape of the DEXTrades query result. Price
// fields are pointers so a missing value is distinguishable from zero;
// records without both prices are dropped during normalization.
type feedResponse struct {
	Data struct {
		Solana struct {
			DEXTrades []dexTrade `json:"DEXTrades"`
		} `json:"Solana"`
	} `json:"data"`
}

type dexTrade struct {
	Trade struct {
		Buy struct {
			Price      *float64 `json:"Price"`
			PriceInUSD *float64 `json:"PriceInUSD"`
			Currency   currency `json:"Currency"`
		} `json:"Buy"`
	} `json:"Trade"`
}

type currency struct {
	Name        string `json:"Name"`
	Symbol      string `json:"Symbol"`
	MintAddress string `json:"MintAddress"`
	Decimals    int    `json:"Decimals"`
	Fungible    bool   `json:"Fungible"`
	URI         string `json:"Uri"`
}
