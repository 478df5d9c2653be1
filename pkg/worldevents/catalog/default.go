package catalog

import "github.com/randalmurphal/worldevents/pkg/worldevents/model"

func port(id, name, country, region string, lat, lon float64, hazards model.Hazard) model.Port {
	return model.Port{
		ID:       id,
		Name:     name,
		Country:  country,
		Region:   region,
		Position: model.Coordinate{Lat: lat, Lon: lon},
		Hazards:  hazards,
	}
}

const (
	hurricane  = model.HazardHurricane
	ice        = model.HazardIce
	fog        = model.HazardFog
	seismic    = model.HazardSeismic
	chokepoint = model.HazardChokepoint
)

var defaultPorts = []model.Port{
	port("SGSIN", "Singapore", "SG", "Strait of Malacca", 1.26, 103.84, chokepoint),
	port("MYPKG", "Port Klang", "MY", "Strait of Malacca", 3.00, 101.39, 0),
	port("CNSHA", "Shanghai", "CN", "East China Sea", 31.23, 121.49, hurricane|fog),
	port("CNSZX", "Shenzhen", "CN", "South China Sea", 22.54, 114.06, hurricane),
	port("HKHKG", "Hong Kong", "HK", "South China Sea", 22.29, 114.16, hurricane),
	port("KRPUS", "Busan", "KR", "Korea Strait", 35.10, 129.04, hurricane|seismic),
	port("JPTYO", "Tokyo", "JP", "Northwest Pacific", 35.62, 139.79, hurricane|seismic),
	port("PHMNL", "Manila", "PH", "Sulu Sea", 14.58, 120.97, hurricane|seismic),
	port("LKCMB", "Colombo", "LK", "Indian Ocean", 6.95, 79.84, 0),
	port("AEJEA", "Jebel Ali", "AE", "Persian Gulf", 25.01, 55.06, chokepoint),
	port("OMSLL", "Salalah", "OM", "Arabian Sea", 16.94, 54.00, 0),
	port("DJJIB", "Djibouti", "DJ", "Gulf of Aden", 11.60, 43.14, chokepoint),
	port("SOMGQ", "Mogadishu", "SO", "Horn of Africa", 2.04, 45.34, 0),
	port("EGPSD", "Port Said", "EG", "Suez Canal", 31.26, 32.30, chokepoint),
	port("GRPIR", "Piraeus", "GR", "Mediterranean", 37.94, 23.63, seismic),
	port("ESALG", "Algeciras", "ES", "Strait of Gibraltar", 36.13, -5.43, chokepoint|fog),
	port("NLRTM", "Rotterdam", "NL", "North Sea", 51.95, 4.14, fog),
	port("BEANR", "Antwerp", "BE", "North Sea", 51.26, 4.40, fog),
	port("DEHAM", "Hamburg", "DE", "North Sea", 53.54, 9.98, fog|ice),
	port("GBFXT", "Felixstowe", "GB", "North Sea", 51.96, 1.35, fog),
	port("RULED", "St Petersburg", "RU", "Baltic Sea", 59.88, 30.21, ice),
	port("NGAPP", "Lagos Apapa", "NG", "Gulf of Guinea", 6.44, 3.39, 0),
	port("ZADUR", "Durban", "ZA", "Indian Ocean", -29.87, 31.03, 0),
	port("BRSSZ", "Santos", "BR", "South Atlantic", -23.96, -46.30, 0),
	port("PABLB", "Balboa", "PA", "Panama Canal", 8.95, -79.57, chokepoint),
	port("USHOU", "Houston", "US", "Gulf of Mexico", 29.73, -95.27, hurricane),
	port("USNYC", "New York", "US", "US East Coast", 40.68, -74.04, hurricane|fog),
	port("USLAX", "Los Angeles", "US", "US West Coast", 33.74, -118.26, seismic|fog),
	port("CAVAN", "Vancouver", "CA", "Pacific Northwest", 49.29, -123.11, seismic|fog),
	port("AUMEL", "Melbourne", "AU", "Bass Strait", -37.84, 144.92, 0),
}

var defaultRoutes = []model.Route{
	{ID: "asia-europe", Name: "Asia - North Europe via Suez", BaseCost: 250000,
		PortIDs: []string{"CNSHA", "SGSIN", "LKCMB", "DJJIB", "EGPSD", "GRPIR", "ESALG", "NLRTM", "DEHAM"}},
	{ID: "transpacific", Name: "Transpacific", BaseCost: 180000,
		PortIDs: []string{"CNSHA", "KRPUS", "USLAX"}},
	{ID: "transpacific-north", Name: "South China - Pacific Northwest", BaseCost: 170000,
		PortIDs: []string{"CNSZX", "HKHKG", "JPTYO", "CAVAN"}},
	{ID: "transatlantic", Name: "North Europe - US East Coast", BaseCost: 120000,
		PortIDs: []string{"NLRTM", "GBFXT", "USNYC"}},
	{ID: "asia-usec", Name: "Asia - US East Coast via Panama", BaseCost: 220000,
		PortIDs: []string{"CNSHA", "PABLB", "USHOU", "USNYC"}},
	{ID: "gulf-asia", Name: "Gulf - Far East", BaseCost: 140000,
		PortIDs: []string{"AEJEA", "LKCMB", "MYPKG", "SGSIN", "HKHKG"}},
	{ID: "west-africa-europe", Name: "West Africa - North Europe", BaseCost: 90000,
		PortIDs: []string{"NGAPP", "ESALG", "BEANR"}},
	{ID: "south-atlantic", Name: "Santos - Durban", BaseCost: 80000,
		PortIDs: []string{"BRSSZ", "ZADUR"}},
	{ID: "east-africa", Name: "East Africa - Gulf", BaseCost: 60000,
		PortIDs: []string{"SOMGQ", "DJJIB", "OMSLL", "AEJEA"}},
	{ID: "oceania", Name: "Melbourne - Singapore", BaseCost: 100000,
		PortIDs: []string{"AUMEL", "SGSIN"}},
	{ID: "baltic", Name: "Baltic feeder", BaseCost: 40000,
		PortIDs: []string{"RULED", "DEHAM"}},
	{ID: "intra-asia", Name: "Intra-Asia loop", BaseCost: 50000,
		PortIDs: []string{"PHMNL", "HKHKG", "CNSZX", "SGSIN"}},
}

// Default returns the built-in catalog of major world ports and trade lanes.
func Default() *Static {
	return MustNew(defaultPorts, defaultRoutes)
}
