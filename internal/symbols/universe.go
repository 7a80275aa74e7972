package symbols

// Universe represents a predefined stock universe
type Universe string

const (
	UniverseIndia Universe = "india" // Nifty 100 + Midcap 150
	UniverseUSA   Universe = "usa"   // top US large caps
	UniverseTest  Universe = "test"  // Small set for testing
)

// GetUniverse returns the deduplicated, ordered symbol list for a universe
func GetUniverse(u Universe) []string {
	switch u {
	case UniverseIndia:
		return dedup(append(append([]string{}, Nifty100Symbols...), Midcap150Symbols...))
	case UniverseUSA:
		return dedup(USATop100Symbols)
	case UniverseTest:
		return dedup(TestSymbols)
	default:
		return nil
	}
}

// dedup removes duplicates while preserving order
func dedup(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// TestSymbols is a small set for quick testing
var TestSymbols = []string{
	"RELIANCE", "TCS", "HDFCBANK", "INFY", "ICICIBANK",
	"ITC", "LT", "AXISBANK", "MARUTI", "TITAN",
}

// Nifty100Symbols is the Nifty 100 constituents, periodically updated from
// the NSE index composition
var Nifty100Symbols = []string{
	"RELIANCE", "TCS", "HDFCBANK", "INFY", "ICICIBANK",
	"HINDUNILVR", "BHARTIARTL", "SBIN", "BAJFINANCE", "KOTAKBANK",
	"ITC", "LT", "AXISBANK", "HCLTECH", "ASIANPAINT",
	"MARUTI", "SUNPHARMA", "TITAN", "ULTRACEMCO", "ONGC",
	"NTPC", "BAJAJFINSV", "WIPRO", "POWERGRID", "M&M",
	"TATAMOTORS", "NESTLEIND", "JSWSTEEL", "COALINDIA", "TATASTEEL",
	"ADANIENT", "ADANIPORTS", "TECHM", "HDFCLIFE", "DRREDDY",
	"SBILIFE", "GRASIM", "DIVISLAB", "BRITANNIA", "CIPLA",
	"APOLLOHOSP", "EICHERMOT", "BAJAJ-AUTO", "INDUSINDBK", "HINDALCO",
	"TATACONSUM", "BPCL", "HEROMOTOCO", "SHREECEM", "VEDL",
	"DABUR", "GODREJCP", "HAVELLS", "PIDILITIND", "SIEMENS",
	"BIOCON", "BERGEPAINT", "AMBUJACEM", "MARICO", "SBICARD",
	"ICICIPRULI", "ICICIGI", "COLPAL", "TORNTPHARM", "DLF",
	"ACC", "BANDHANBNK", "MUTHOOTFIN", "NAUKRI", "PEL",
	"LUPIN", "CHOLAFIN", "INDIGO", "GAIL", "IOC",
	"HDFCAMC", "JUBLFOOD", "PGHH", "VOLTAS", "LICI",
	"TRENT", "LTIM", "BANKBARODA", "CANBK", "PNB",
	"UNIONBANK", "IDFCFIRSTB", "INDIANB", "FEDERALBNK", "ADANIGREEN",
	"ADANITRANS", "RECLTD", "PFC", "NHPC", "IRFC",
	"BEL", "HAL", "BHEL", "IRCTC", "ZOMATO",
}

// Midcap150Symbols is the Nifty Midcap 150 constituents, periodically updated
// from the NSE index composition
var Midcap150Symbols = []string{
	"ABBOTINDIA", "ABCAPITAL", "ABFRL", "ALKEM", "AMARAJABAT",
	"APLAPOLLO", "ASTRAL", "ATUL", "AUBANK", "AUROPHARMA",
	"BALRAMCHIN", "BATAINDIA", "BHARATFORG", "BHEL", "CAMS",
	"CANFINHOME", "CENTRALBK", "CGCL", "COFORGE", "CUB",
	"CUMMINSIND", "DEEPAKNTR", "DELHIVERY", "DIXON", "EMAMILTD",
	"ENDURANCE", "ESCORTS", "EXIDEIND", "FACT", "FSL",
	"GLENMARK", "GMRINFRA", "GNFC", "GRANULES", "GSPL",
	"HATSUN", "HINDZINC", "HONAUT", "IBULHSGFIN", "IDBI",
	"IEX", "IIFL", "IPCALAB", "IRB", "ISEC",
	"JKCEMENT", "JSWENERGY", "JUSTDIAL", "KAJARIACER", "KANSAINER",
	"KEI", "KPITTECH", "LATENTVIEW", "LAURUSLABS", "LICHSGFIN",
	"LLOYDSME", "LODHA", "LTF", "LTTS", "MANAPPURAM",
	"MANYAVAR", "MAPMYINDIA", "MAXHEALTH", "MCX", "METROPOLIS",
	"MFSL", "MGL", "MOTHERSON", "MPHASIS", "MRF",
	"NAM-INDIA", "NATIONALUM", "NAVINFLUOR", "NBCC", "NCC",
	"NLCINDIA", "NMDC", "NOCIL", "OBEROIRLTY", "OFSS",
	"OIL", "PAGEIND", "PATANJALI", "PERSISTENT", "PETRONET",
	"PHOENIXLTD", "POLYCAB", "POLYPLEX", "PRESTIGE", "PVRINOX",
	"RAIN", "RAJESHEXPO", "RAMCOCEM", "RATNAMANI", "RAYMOND",
	"RELAXO", "RVNL", "SAIL", "SANOFI", "SCHAEFFLER",
	"SCI", "SFL", "SHRIRAMFIN", "SJVN", "SKFINDIA",
	"SONACOMS", "STARHEALTH", "SUNTV", "SUVENPHAR", "SYNGENE",
	"TATACOMM", "TATAELXSI", "TATAPOWER", "TATVA", "TEAMLEASE",
	"THERMAX", "TIINDIA", "TIMKEN", "TORNTPOWER", "TVSMOTOR",
	"UBL", "UJJIVAN", "UNOMINDA", "UPL", "VBL",
	"VINATIORGA", "VIPIND", "VMART", "WHIRLPOOL", "YESBANK",
	"ZEEL", "ZENSARTECH", "ZYDUSLIFE", "AFFLE", "CLEAN",
	"CROMPTON", "CESC", "INDIAMART", "INTELLECT", "JINDALSAW",
	"JSL", "JUBLPHARMA", "KALYANKJIL", "KIMS", "KRBL",
	"LAXMIMACH", "WESTLIFE", "APTUS", "AAVAS", "ALKYLAMINE",
}

// USATop100Symbols is the top US large caps by market cap
var USATop100Symbols = []string{
	// Technology
	"AAPL", "MSFT", "GOOGL", "GOOG", "AMZN", "NVDA", "META", "TSLA", "AVGO", "ORCL",
	"CRM", "ADBE", "AMD", "ACN", "CSCO", "INTC", "IBM", "TXN", "QCOM", "AMAT",
	// Financials
	"BRK.B", "JPM", "V", "MA", "BAC", "WFC", "GS", "MS", "BLK", "SPGI",
	// Healthcare
	"UNH", "JNJ", "LLY", "PFE", "ABBV", "MRK", "TMO", "ABT", "DHR", "BMY",
	"AMGN", "MDT", "ISRG", "GILD", "CVS", "ELV", "SYK", "REGN", "VRTX", "ZTS",
	// Consumer
	"WMT", "PG", "KO", "PEP", "COST", "MCD", "NKE", "SBUX", "TGT", "LOW",
	"HD", "TJX", "BKNG", "MAR", "ORLY", "AZO", "ROST", "DG", "DLTR", "CMG",
	// Industrials
	"CAT", "DE", "UNP", "HON", "UPS", "BA", "RTX", "LMT", "GE", "MMM",
	// Energy
	"XOM", "CVX", "COP", "SLB", "EOG", "MPC", "PSX", "VLO", "OXY", "KMI",
	// Communications
	"NFLX", "DIS", "CMCSA", "T", "VZ", "TMUS", "CHTR", "EA", "TTWO", "WBD",
}
