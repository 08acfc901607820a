package registry

import (
	"strings"

	"marketdesk/internal/dataprocessing"
	"marketdesk/pkg/contracts/domain"
)

// Shape is the row layout of a dataset's source files
type Shape int

const (
	ShapeLong Shape = iota
	ShapeWide
	ShapeFutures
)

// Regions of the industries dataset
const (
	RegionUS = "US"
	RegionEU = "EU"
)

// Instrument describes one key of a dataset for display
type Instrument struct {
	Key   domain.InstrumentKey `json:"key"`
	Label string               `json:"label"`
	Group string               `json:"group,omitempty"`
}

// Dataset is the parse descriptor and closed key set of one dataset
type Dataset struct {
	ID          domain.DatasetID
	Shape       Shape
	Instruments []Instrument
	Long        dataprocessing.LongSpec
	Wide        dataprocessing.WideSpec
	Futures     dataprocessing.FuturesSpec
}

// Instrument returns the descriptor of key
func (d Dataset) Instrument(key domain.InstrumentKey) (Instrument, bool) {
	for _, in := range d.Instruments {
		if in.Key == key {
			return in, true
		}
	}
	return Instrument{}, false
}

// Keys returns the dataset keys in display order
func (d Dataset) Keys() []domain.InstrumentKey {
	out := make([]domain.InstrumentKey, len(d.Instruments))
	for i, in := range d.Instruments {
		out[i] = in.Key
	}
	return out
}

// Treasury tenors
const (
	US1M  domain.InstrumentKey = "US1M"
	US2M  domain.InstrumentKey = "US2M"
	US3M  domain.InstrumentKey = "US3M"
	US4M  domain.InstrumentKey = "US4M"
	US6M  domain.InstrumentKey = "US6M"
	US1Y  domain.InstrumentKey = "US1Y"
	US2Y  domain.InstrumentKey = "US2Y"
	US3Y  domain.InstrumentKey = "US3Y"
	US5Y  domain.InstrumentKey = "US5Y"
	US7Y  domain.InstrumentKey = "US7Y"
	US10Y domain.InstrumentKey = "US10Y"
	US20Y domain.InstrumentKey = "US20Y"
	US30Y domain.InstrumentKey = "US30Y"
)

// Overnight rates
const (
	EFFR domain.InstrumentKey = "EFFR"
	SOFR domain.InstrumentKey = "SOFR"
	IORB domain.InstrumentKey = "IORB"
)

var treasuryInstruments = []Instrument{
	{Key: US1M, Label: "1M"},
	{Key: US2M, Label: "2M"},
	{Key: US3M, Label: "3M"},
	{Key: US4M, Label: "4M"},
	{Key: US6M, Label: "6M"},
	{Key: US1Y, Label: "1Y"},
	{Key: US2Y, Label: "2Y"},
	{Key: US3Y, Label: "3Y"},
	{Key: US5Y, Label: "5Y"},
	{Key: US7Y, Label: "7Y"},
	{Key: US10Y, Label: "10Y"},
	{Key: US20Y, Label: "20Y"},
	{Key: US30Y, Label: "30Y"},
}

// treasuryColumns maps the par yield curve export headers onto tenors
var treasuryColumns = map[string]domain.InstrumentKey{
	"1 MO":  US1M,
	"2 MO":  US2M,
	"3 MO":  US3M,
	"4 MO":  US4M,
	"6 MO":  US6M,
	"1 YR":  US1Y,
	"2 YR":  US2Y,
	"3 YR":  US3Y,
	"5 YR":  US5Y,
	"7 YR":  US7Y,
	"10 YR": US10Y,
	"20 YR": US20Y,
	"30 YR": US30Y,
}

var rateInstruments = []Instrument{
	{Key: EFFR, Label: "Effective Fed Funds"},
	{Key: SOFR, Label: "SOFR"},
	{Key: IORB, Label: "Interest on Reserves"},
}

var rateAliases = map[string]domain.InstrumentKey{
	"FEDL01":   EFFR,
	"FDFD":     EFFR,
	"SOFRRATE": SOFR,
	"IORB":     IORB,
	"IRRBIOER": IORB,
}

var creditInstruments = []Instrument{
	{Key: "IG", Label: "US Investment Grade", Group: RegionUS},
	{Key: "HY", Label: "US High Yield", Group: RegionUS},
	{Key: "BBB", Label: "US BBB", Group: RegionUS},
	{Key: "BB", Label: "US BB", Group: RegionUS},
	{Key: "B", Label: "US B", Group: RegionUS},
	{Key: "CCC", Label: "US CCC & Lower", Group: RegionUS},
	{Key: "EUIG", Label: "Euro Investment Grade", Group: RegionEU},
	{Key: "EUHY", Label: "Euro High Yield", Group: RegionEU},
}

// creditAliases covers ICE BofA index codes and Bloomberg OAS tickers
var creditAliases = map[string]domain.InstrumentKey{
	"C0A0":    "IG",
	"LUACOAS": "IG",
	"H0A0":    "HY",
	"LF98OAS": "HY",
	"C0A4":    "BBB",
	"H0A1":    "BB",
	"H0A2":    "B",
	"H0A3":    "CCC",
	"ER00":    "EUIG",
	"HE00":    "EUHY",
}

var watchlistInstruments = []Instrument{
	{Key: "SPX", Label: "S&P 500", Group: RegionUS},
	{Key: "NDX", Label: "Nasdaq 100", Group: RegionUS},
	{Key: "INDU", Label: "Dow Jones", Group: RegionUS},
	{Key: "RTY", Label: "Russell 2000", Group: RegionUS},
	{Key: "SX5E", Label: "Euro Stoxx 50", Group: RegionEU},
	{Key: "SXXP", Label: "Stoxx 600", Group: RegionEU},
	{Key: "UKX", Label: "FTSE 100", Group: RegionEU},
	{Key: "DAX", Label: "DAX", Group: RegionEU},
	{Key: "NKY", Label: "Nikkei 225", Group: "ASIA"},
	{Key: "HSI", Label: "Hang Seng", Group: "ASIA"},
	{Key: "VIX", Label: "VIX", Group: "CROSS"},
	{Key: "DXY", Label: "Dollar Index", Group: "CROSS"},
	{Key: "GOLD", Label: "Gold", Group: "CROSS"},
	{Key: "WTI", Label: "WTI Crude", Group: "CROSS"},
}

var watchlistAliases = map[string]domain.InstrumentKey{
	"XAU":      "GOLD",
	"XAUUSD":   "GOLD",
	"GC1":      "GOLD",
	"CL1":      "WTI",
	"USCRWTIC": "WTI",
	"DJI":      "INDU",
	"GDAXI":    "DAX",
	"N225":     "NKY",
}

// Industry prefixes and the region they belong to
var industryPrefixes = map[string]string{
	"S5": RegionUS,
	"SX": RegionEU,
}

var industryInstruments = []Instrument{
	{Key: "S5INFT", Label: "Information Technology", Group: RegionUS},
	{Key: "S5FINL", Label: "Financials", Group: RegionUS},
	{Key: "S5HLTH", Label: "Health Care", Group: RegionUS},
	{Key: "S5COND", Label: "Consumer Discretionary", Group: RegionUS},
	{Key: "S5CONS", Label: "Consumer Staples", Group: RegionUS},
	{Key: "S5INDU", Label: "Industrials", Group: RegionUS},
	{Key: "S5ENRS", Label: "Energy", Group: RegionUS},
	{Key: "S5MATR", Label: "Materials", Group: RegionUS},
	{Key: "S5UTIL", Label: "Utilities", Group: RegionUS},
	{Key: "S5RLST", Label: "Real Estate", Group: RegionUS},
	{Key: "S5TELS", Label: "Communication Services", Group: RegionUS},
	{Key: "SX7P", Label: "Banks", Group: RegionEU},
	{Key: "SXFP", Label: "Financial Services", Group: RegionEU},
	{Key: "SXIP", Label: "Insurance", Group: RegionEU},
	{Key: "SX8P", Label: "Technology", Group: RegionEU},
	{Key: "SXDP", Label: "Health Care", Group: RegionEU},
	{Key: "SXEP", Label: "Energy", Group: RegionEU},
	{Key: "SXNP", Label: "Industrial Goods & Services", Group: RegionEU},
	{Key: "SXAP", Label: "Automobiles & Parts", Group: RegionEU},
	{Key: "SX3P", Label: "Food, Beverage & Tobacco", Group: RegionEU},
	{Key: "SXPP", Label: "Basic Resources", Group: RegionEU},
	{Key: "SX4P", Label: "Chemicals", Group: RegionEU},
	{Key: "SX6P", Label: "Utilities", Group: RegionEU},
	{Key: "SXKP", Label: "Telecommunications", Group: RegionEU},
	{Key: "SXOP", Label: "Construction & Materials", Group: RegionEU},
	{Key: "SXRP", Label: "Retail", Group: RegionEU},
	{Key: "SXMP", Label: "Media", Group: RegionEU},
	{Key: "SXTP", Label: "Travel & Leisure", Group: RegionEU},
	{Key: "SXQP", Label: "Personal Care, Drug & Grocery", Group: RegionEU},
	{Key: "SX86P", Label: "Real Estate", Group: RegionEU},
}

// RegionOf returns the region of an industry key from its ticker prefix
func RegionOf(key domain.InstrumentKey) (string, bool) {
	for prefix, region := range industryPrefixes {
		if strings.HasPrefix(string(key), prefix) {
			return region, true
		}
	}
	return "", false
}

// Catalog holds every dataset descriptor by id
type Catalog map[domain.DatasetID]Dataset

// DefaultCatalog returns the descriptors of all datasets
func DefaultCatalog() Catalog {
	prefixes := make([]string, 0, len(industryPrefixes))
	for p := range industryPrefixes {
		prefixes = append(prefixes, p)
	}

	return Catalog{
		domain.DatasetTreasury: {
			ID:          domain.DatasetTreasury,
			Shape:       ShapeWide,
			Instruments: treasuryInstruments,
			Wide: dataprocessing.WideSpec{
				Columns:    treasuryColumns,
				DateColumn: dataprocessing.DefaultDateColumn,
			},
		},
		domain.DatasetRates:      longDataset(domain.DatasetRates, "rate", rateInstruments, rateAliases, nil),
		domain.DatasetCredit:     longDataset(domain.DatasetCredit, "spread", creditInstruments, creditAliases, nil),
		domain.DatasetWatchlist:  longDataset(domain.DatasetWatchlist, "stox", watchlistInstruments, watchlistAliases, nil),
		domain.DatasetIndustries: longDataset(domain.DatasetIndustries, "einx", industryInstruments, nil, prefixes),
		domain.DatasetFedFutures: {
			ID:    domain.DatasetFedFutures,
			Shape: ShapeFutures,
			Futures: dataprocessing.FuturesSpec{
				Category:    dataprocessing.DefaultFuturesCategory,
				GenericRoot: dataprocessing.DefaultGenericRoot,
			},
		},
	}
}

func longDataset(id domain.DatasetID, category string, instruments []Instrument, aliases map[string]domain.InstrumentKey, prefixes []string) Dataset {
	keys := make([]domain.InstrumentKey, len(instruments))
	for i, in := range instruments {
		keys[i] = in.Key
	}
	return Dataset{
		ID:          id,
		Shape:       ShapeLong,
		Instruments: instruments,
		Long: dataprocessing.LongSpec{
			Category:       category,
			Keys:           domain.NewKeySet(keys, aliases),
			TickerPrefixes: prefixes,
		},
	}
}
