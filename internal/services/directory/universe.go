package directory

// defaultUniverse is the symbol set profiled during a dynamic refresh.
// Config can replace it outright via directory.universe.
var defaultUniverse = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "TSLA", "META", "BRK-A", "UNH", "JNJ",
	"JPM", "V", "PG", "XOM", "HD", "CVX", "MA", "ABBV", "PFE", "AVGO",
	"COST", "DIS", "KO", "MRK", "PEP", "TMO", "WMT", "BAC", "CRM", "NFLX",
	"ADBE", "ACN", "LLY", "DHR", "ABT", "TXN", "VZ", "NKE", "ORCL", "CMCSA",
	"WFC", "PM", "RTX", "NEE", "UPS", "T", "BMY", "HON", "QCOM", "LOW",
	"SPGI", "INTC", "UNP", "CAT", "INTU", "IBM", "GS", "AMD", "AMGN", "MS",
	"ELV", "DE", "BKNG", "TJX", "BLK", "AXP", "MDLZ", "GILD", "ADP", "SYK",
	"CVS", "VRTX", "SCHW", "C", "AMT", "TMUS", "CI", "ZTS", "MO", "CB",
	"FISV", "PYPL", "SO", "REGN", "DUK", "CME", "EOG", "BDX", "ITW", "CSX",
	"TGT", "APD", "CL", "ISRG", "MMC", "NOC", "FCX", "EMR", "GD", "ECL",
}
