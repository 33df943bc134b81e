// Package scotland estimates constituency-level revenue for the Scottish
// council tax reform announced in Budget 2025-26 (Bands I and J for £1m+
// properties from April 2028). Transaction microdata is not published for
// Scotland, so council-level sales estimates are distributed to the 73
// Scottish Parliament constituencies using wealth-adjusted population weights.
package scotland

import "github.com/shopspring/decimal"

// Benchmark surcharge rates. Scotland has not announced Band I/J rates, so the
// UK schedule's lowest band rate is used for Band J and an extrapolation below
// the UK minimum for Band I.
var (
	BandIRate = decimal.NewFromInt(1500)
	BandJRate = decimal.NewFromInt(2500)
)

// Band split observed in 2024 sales: 416 of 466 £1m+ sales fell in £1m-£2m.
var (
	BandIRatio = decimal.NewFromInt(416).Div(decimal.NewFromInt(466))
	BandJRatio = decimal.NewFromInt(50).Div(decimal.NewFromInt(466))
)

// EstimatedStock is the total count of £1m+ dwellings in Scotland (Savills,
// February 2023). Revenue is stock times average rate; the sales figures
// below are used only for geographic distribution.
const EstimatedStock = 11481

// ExpectedConstituencies is the number of Scottish Parliament constituencies
// on 2021 boundaries.
const ExpectedConstituencies = 73

// DefaultPopulation substitutes for constituencies absent from the NRS
// population file, roughly the national mean.
const DefaultPopulation = 75000

// CouncilSales holds £1m+ residential sales per council area, 2024-25
// (Registers of Scotland Property Market Report; Edinburgh holds over half).
var CouncilSales = map[string]int{
	"City of Edinburgh":     200,
	"East Lothian":          35,
	"Fife":                  30,
	"East Dunbartonshire":   25,
	"Aberdeen City":         20,
	"Aberdeenshire":         15,
	"Glasgow City":          15,
	"Perth and Kinross":     12,
	"Stirling":              10,
	"Highland":              10,
	"East Renfrewshire":     10,
	"Scottish Borders":      8,
	"South Ayrshire":        7,
	"Argyll and Bute":       6,
	"Midlothian":            5,
	"West Lothian":          5,
	"South Lanarkshire":     3,
	"North Lanarkshire":     2,
	"Renfrewshire":          2,
	"Inverclyde":            1,
	"Falkirk":               1,
	"Clackmannanshire":      1,
	"Dumfries and Galloway": 1,
	"Dundee City":           1,
	"Angus":                 1,
	"Moray":                 1,
	"North Ayrshire":        1,
	"West Dunbartonshire":   1,
	"East Ayrshire":         0,
	"Eilean Siar":           0,
	"Orkney Islands":        0,
	"Shetland Islands":      0,
}

// ConstituencyCouncil maps each Scottish Parliament constituency (2021
// boundaries) to the council area it sits in. Constituencies that straddle a
// council boundary are assigned to the council holding most of their area.
var ConstituencyCouncil = map[string]string{
	"Edinburgh Central":            "City of Edinburgh",
	"Edinburgh Western":            "City of Edinburgh",
	"Edinburgh Southern":           "City of Edinburgh",
	"Edinburgh Pentlands":          "City of Edinburgh",
	"Edinburgh Northern and Leith": "City of Edinburgh",
	"Edinburgh Eastern":            "City of Edinburgh",

	"East Lothian": "East Lothian",

	"North East Fife":         "Fife",
	"Dunfermline":             "Fife",
	"Cowdenbeath":             "Fife",
	"Kirkcaldy":               "Fife",
	"Mid Fife and Glenrothes": "Fife",

	"Strathkelvin and Bearsden": "East Dunbartonshire",

	"Aberdeen Central":                    "Aberdeen City",
	"Aberdeen Donside":                    "Aberdeen City",
	"Aberdeen South and North Kincardine": "Aberdeen City",

	"Aberdeenshire West":          "Aberdeenshire",
	"Aberdeenshire East":          "Aberdeenshire",
	"Banffshire and Buchan Coast": "Aberdeenshire",

	"Glasgow Kelvin":                  "Glasgow City",
	"Glasgow Cathcart":                "Glasgow City",
	"Glasgow Anniesland":              "Glasgow City",
	"Glasgow Southside":               "Glasgow City",
	"Glasgow Pollok":                  "Glasgow City",
	"Glasgow Maryhill and Springburn": "Glasgow City",
	"Glasgow Provan":                  "Glasgow City",
	"Glasgow Shettleston":             "Glasgow City",
	"Rutherglen":                      "Glasgow City",

	"Perthshire North":                   "Perth and Kinross",
	"Perthshire South and Kinross-shire": "Perth and Kinross",

	"Stirling": "Stirling",

	"Inverness and Nairn":            "Highland",
	"Caithness, Sutherland and Ross": "Highland",
	"Skye, Lochaber and Badenoch":    "Highland",

	"Eastwood": "East Renfrewshire",

	"Ettrick, Roxburgh and Berwickshire":         "Scottish Borders",
	"Midlothian South, Tweeddale and Lauderdale": "Scottish Borders",

	"Ayr":                              "South Ayrshire",
	"Carrick, Cumnock and Doon Valley": "South Ayrshire",

	"Argyll and Bute": "Argyll and Bute",

	"Midlothian North and Musselburgh": "Midlothian",

	"Linlithgow":    "West Lothian",
	"Almond Valley": "West Lothian",

	"East Kilbride":                     "South Lanarkshire",
	"Clydesdale":                        "South Lanarkshire",
	"Hamilton, Larkhall and Stonehouse": "South Lanarkshire",
	"Uddingston and Bellshill":          "South Lanarkshire",

	"Motherwell and Wishaw":   "North Lanarkshire",
	"Airdrie and Shotts":      "North Lanarkshire",
	"Coatbridge and Chryston": "North Lanarkshire",
	"Cumbernauld and Kilsyth": "North Lanarkshire",

	"Paisley":                     "Renfrewshire",
	"Renfrewshire North and West": "Renfrewshire",
	"Renfrewshire South":          "Renfrewshire",

	"Greenock and Inverclyde": "Inverclyde",

	"Falkirk East": "Falkirk",
	"Falkirk West": "Falkirk",

	"Clackmannanshire and Dunblane": "Clackmannanshire",

	"Dumfriesshire":              "Dumfries and Galloway",
	"Galloway and West Dumfries": "Dumfries and Galloway",

	"Dundee City East": "Dundee City",
	"Dundee City West": "Dundee City",

	"Angus North and Mearns": "Angus",
	"Angus South":            "Angus",

	"Moray": "Moray",

	"Cunninghame North": "North Ayrshire",
	"Cunninghame South": "North Ayrshire",

	"Kilmarnock and Irvine Valley": "East Ayrshire",

	"Dumbarton":               "West Dunbartonshire",
	"Clydebank and Milngavie": "West Dunbartonshire",

	"Na h-Eileanan an Iar": "Eilean Siar",
	"Orkney Islands":       "Orkney Islands",
	"Shetland Islands":     "Shetland Islands",
}

// AverageRate is the blended annual surcharge per £1m+ property under the
// benchmark rates and the observed band split (about £1,607).
func AverageRate() decimal.Decimal {
	return BandIRatio.Mul(BandIRate).Add(BandJRatio.Mul(BandJRate))
}

// StockRevenue is the headline revenue estimate: stock times average rate
// (about £18.5m).
func StockRevenue() decimal.Decimal {
	return decimal.NewFromInt(EstimatedStock).Mul(AverageRate())
}
