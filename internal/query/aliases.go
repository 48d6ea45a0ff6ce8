package query

import "sort"

// companyAliases maps lowercase company names, brands and colloquialisms to
// tickers. Multi-word phrases are matched before shorter ones so "bank of
// america" can never be shadowed by a hypothetical "bank" entry.
var companyAliases = map[string]string{
	// Technology
	"apple": "AAPL", "apple inc": "AAPL", "iphone": "AAPL",
	"microsoft": "MSFT", "windows": "MSFT", "xbox": "MSFT",
	"google": "GOOGL", "alphabet": "GOOGL", "youtube": "GOOGL",
	"amazon": "AMZN", "aws": "AMZN", "prime": "AMZN",
	"meta": "META", "facebook": "META", "instagram": "META", "whatsapp": "META",
	"tesla": "TSLA", "spacex": "TSLA", "elon musk": "TSLA",
	"netflix": "NFLX", "streaming": "NFLX",
	"nvidia": "NVDA", "ai chips": "NVDA",
	"intel": "INTC", "processor": "INTC",
	"oracle": "ORCL", "database": "ORCL",
	"salesforce": "CRM", "crm": "CRM",
	"adobe": "ADBE", "photoshop": "ADBE",
	"zoom": "ZM", "video call": "ZM",

	// Retail & consumer
	"walmart": "WMT", "supermarket": "WMT",
	"target": "TGT", "retail": "TGT",
	"costco": "COST", "wholesale": "COST",
	"home depot": "HD", "hardware store": "HD",
	"mcdonalds": "MCD", "mcdonald's": "MCD", "fast food": "MCD",
	"starbucks": "SBUX", "coffee": "SBUX",
	"nike": "NKE", "sports shoes": "NKE", "sneakers": "NKE",
	"coca cola": "KO", "coke": "KO", "coca-cola": "KO",
	"pepsi": "PEP", "pepsico": "PEP",

	// Healthcare
	"unitedhealth": "UNH", "united health": "UNH", "health insurance": "UNH",
	"johnson": "JNJ", "johnson & johnson": "JNJ", "j&j": "JNJ",
	"pfizer": "PFE", "vaccine": "PFE",
	"moderna": "MRNA", "covid": "MRNA",
	"cvs": "CVS", "pharmacy": "CVS",

	// Financial
	"berkshire": "BRK-B", "berkshire hathaway": "BRK-B", "warren buffett": "BRK-B",
	"jpmorgan": "JPM", "jp morgan": "JPM", "chase": "JPM",
	"bank of america": "BAC", "bofa": "BAC",
	"goldman sachs": "GS", "goldman": "GS",
	"american express": "AXP", "amex": "AXP",
	"visa": "V", "credit card": "V",
	"mastercard": "MA", "payment": "MA",

	// Energy & industrial
	"exxon": "XOM", "exxonmobil": "XOM", "oil": "XOM",
	"chevron": "CVX", "gas": "CVX",
	"boeing": "BA", "airplane": "BA", "aircraft": "BA",
	"caterpillar": "CAT", "construction": "CAT",
	"general electric": "GE", "ge": "GE",

	// Entertainment & media
	"disney": "DIS", "walt disney": "DIS", "marvel": "DIS",
	"comcast": "CMCSA", "cable": "CMCSA",
	"verizon": "VZ", "telecom": "VZ",
	"at&t": "T", "att": "T", "phone": "T",
}

// knownTickers is the allow-list consulted when a bare uppercase token shows
// up in a question. Without it, ordinary capitalised words ("CEO", "ASAP")
// would read as tickers.
var knownTickers = map[string]struct{}{
	"AAPL": {}, "MSFT": {}, "GOOGL": {}, "AMZN": {}, "TSLA": {}, "META": {},
	"NFLX": {}, "NVDA": {}, "INTC": {}, "ORCL": {}, "CRM": {}, "ADBE": {},
	"ZM": {}, "WMT": {}, "TGT": {}, "COST": {}, "HD": {}, "MCD": {},
	"SBUX": {}, "NKE": {}, "KO": {}, "PEP": {}, "UNH": {}, "JNJ": {},
	"PFE": {}, "MRNA": {}, "CVS": {}, "BRK-B": {}, "BRK.A": {}, "JPM": {},
	"BAC": {}, "GS": {}, "AXP": {}, "V": {}, "MA": {}, "XOM": {}, "CVX": {},
	"BA": {}, "CAT": {}, "GE": {}, "DIS": {}, "CMCSA": {}, "VZ": {}, "T": {},
}

// aliasPhrases holds the alias keys sorted longest first, equal lengths
// alphabetically, so extraction is deterministic when a question names more
// than one company.
var aliasPhrases = sortAliasPhrases()

func sortAliasPhrases() []string {
	phrases := make([]string, 0, len(companyAliases))
	for phrase := range companyAliases {
		phrases = append(phrases, phrase)
	}
	sort.Slice(phrases, func(i, j int) bool {
		if len(phrases[i]) != len(phrases[j]) {
			return len(phrases[i]) > len(phrases[j])
		}
		return phrases[i] < phrases[j]
	})
	return phrases
}
