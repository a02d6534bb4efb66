// market/instruments.go
package market

import "sort"

// Instrument is immutable reference data for something the simulator can trade.
type Instrument struct {
	Symbol string
	Name   string
}

// Instruments is the built-in catalog of tradable instruments, keyed by symbol.
var Instruments = map[string]Instrument{
	"005930": {Symbol: "005930", Name: "Samsung Electronics"},
	"035720": {Symbol: "035720", Name: "Kakao"},
	"035420": {Symbol: "035420", Name: "NAVER"},
	"373220": {Symbol: "373220", Name: "LG Energy Solution"},
	"352820": {Symbol: "352820", Name: "HYBE"},
	"000660": {Symbol: "000660", Name: "SK hynix"},
	"005380": {Symbol: "005380", Name: "Hyundai Motor"},
	"105560": {Symbol: "105560", Name: "KB Financial"},
}

// Lookup returns the catalog entry for symbol. Unknown symbols get an
// Instrument whose name is the symbol itself.
func Lookup(symbol string) (Instrument, bool) {
	inst, ok := Instruments[symbol]
	if !ok {
		return Instrument{Symbol: symbol, Name: symbol}, false
	}
	return inst, true
}

// Symbols returns the catalog symbols in sorted order.
func Symbols() []string {
	out := make([]string, 0, len(Instruments))
	for s := range Instruments {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
